package sysmon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPiholeFetchStats(t *testing.T) {
	const sid = "test-session-id"
	var loggedOut bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/auth":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "hunter2", body["password"])
			json.NewEncoder(w).Encode(map[string]any{"session": map[string]any{"sid": sid}})

		case r.Method == http.MethodGet && r.URL.Path == "/api/stats/summary":
			assert.Equal(t, sid, r.Header.Get("sid"))
			// counters live in nested groups; domains_being_blocked sits
			// under "gravity", not at the top level
			w.Write([]byte(`{
				"queries": {"total": 41258, "blocked": 9321, "percent_blocked": 22.594, "forwarded": 20122, "cached": 11815},
				"gravity": {"domains_being_blocked": 131605},
				"clients": {"active": 17}
			}`))

		case r.Method == http.MethodDelete && r.URL.Path == "/api/auth":
			assert.Equal(t, sid, r.Header.Get("sid"))
			loggedOut = true
			w.WriteHeader(http.StatusNoContent)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewPiholeClient(strings.TrimPrefix(srv.URL, "http://"), "hunter2", zap.NewNop().Sugar())
	stats, err := client.FetchStats()
	require.NoError(t, err)

	assert.Equal(t, int64(41258), stats.QueriesToday)
	assert.Equal(t, int64(9321), stats.AdsBlockedToday)
	assert.Equal(t, 22.59, stats.AdsPercentageToday)
	assert.Equal(t, int64(131605), stats.DomainsBeingBlocked)
	assert.Equal(t, int64(20122), stats.QueriesForwarded)
	assert.Equal(t, int64(11815), stats.QueriesCached)
	assert.Equal(t, int64(17), stats.UniqueClients)
	assert.True(t, loggedOut, "session must be released even on success")
}

func TestPiholeAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewPiholeClient(strings.TrimPrefix(srv.URL, "http://"), "wrong", zap.NewNop().Sugar())
	_, err := client.FetchStats()
	assert.Error(t, err)
}

func TestPiholeLogsOutAfterSummaryFailure(t *testing.T) {
	const sid = "test-session-id"
	var loggedOut bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/auth":
			json.NewEncoder(w).Encode(map[string]any{"session": map[string]any{"sid": sid}})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/auth":
			loggedOut = true
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewPiholeClient(strings.TrimPrefix(srv.URL, "http://"), "hunter2", zap.NewNop().Sugar())
	_, err := client.FetchStats()
	assert.Error(t, err)
	assert.True(t, loggedOut)
}
