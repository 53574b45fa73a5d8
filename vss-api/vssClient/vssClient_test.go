package vssClient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SmshNGrab/joan-home-displays/vss-api/vssStructs"
)

// fakeVss simulates the VSS REST API closely enough for the client: replace
// semantics on PUT, 404 for unknown ids, 500 on restarting an offline
// device, and the field-casing defect (keys other than the exact expected
// casing are accepted and silently dropped).
type fakeVss struct {
	mu            sync.Mutex
	devices       map[string]map[string]any
	sessions      map[string]map[string]any
	online        map[string]bool
	rejectAuth    bool
	dropAllFields bool
}

func newFakeVss() *fakeVss {
	return &fakeVss{
		devices:  make(map[string]map[string]any),
		sessions: make(map[string]map[string]any),
		online:   make(map[string]bool),
	}
}

func (f *fakeVss) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authorization") == "" || f.rejectAuth {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api")
	switch {
	case r.Method == http.MethodGet && path == "/device/":
		list := make([]map[string]any, 0, len(f.devices))
		for _, d := range f.devices {
			list = append(list, d)
		}
		json.NewEncoder(w).Encode(list)

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/device/"):
		id := strings.TrimPrefix(path, "/device/")
		device, ok := f.devices[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(device)

	case r.Method == http.MethodPut && strings.HasPrefix(path, "/device/"):
		id := strings.TrimPrefix(path, "/device/")
		var device map[string]any
		if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.devices[id] = device
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/restart"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/session/"), "/restart")
		if !f.online[id] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/session/"):
		id := strings.TrimPrefix(path, "/session/")
		session, ok := f.sessions[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(session)

	case r.Method == http.MethodPut && strings.HasPrefix(path, "/session/"):
		id := strings.TrimPrefix(path, "/session/")
		var session map[string]any
		if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.sessions[id] = f.filterFields(session)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// filterFields models the casing defect: only exactly-cased keys survive,
// everything else is dropped without an error.
func (f *fakeVss) filterFields(session map[string]any) map[string]any {
	backend, ok := session["Backend"].(map[string]any)
	if !ok {
		return session
	}
	fields, ok := backend["Fields"].(map[string]any)
	if !ok {
		return session
	}
	kept := make(map[string]any)
	if !f.dropAllFields {
		for key, value := range fields {
			if key == vssStructs.FieldURL || key == vssStructs.FieldReloadTimeout {
				kept[key] = value
			}
		}
	}
	backend["Fields"] = kept
	return session
}

func newTestClient(t *testing.T, srv *httptest.Server) *VssApiClient {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	client, err := NewVssApiClient(Config{
		Host:   u.Hostname(),
		Port:   port,
		Key:    "apikey",
		Secret: "topsecret",
	}, zap.NewNop().Sugar())
	require.NoError(t, err)
	return client
}

func TestGetDeviceNotFound(t *testing.T) {
	srv := httptest.NewServer(newFakeVss())
	defer srv.Close()
	client := newTestClient(t, srv)

	_, err := client.GetDevice("4d002300-1350-4b4d-5231-302000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthRejected(t *testing.T) {
	fake := newFakeVss()
	fake.rejectAuth = true
	srv := httptest.NewServer(fake)
	defer srv.Close()
	client := newTestClient(t, srv)

	_, err := client.ListDevices()
	assert.ErrorIs(t, err, ErrAuth)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(newFakeVss())
	client := newTestClient(t, srv)
	srv.Close()

	_, err := client.ListDevices()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrAuth)
}

func TestListDevicesNormalizesUuids(t *testing.T) {
	fake := newFakeVss()
	fake.devices["4d002300-1350-4b4d-5231-302000000000"] = map[string]any{
		// VSS itself stores lowercase; be liberal in what the fake returns
		"Uuid":  "4D002300-1350-4B4D-5231-302000000000",
		"State": "online",
	}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	client := newTestClient(t, srv)

	devices, err := client.ListDevices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "4d002300-1350-4b4d-5231-302000000000", devices[0].Uuid)
	assert.Equal(t, "online", devices[0].State)
}

func TestUpdateDeviceRoundTripsUnknownFields(t *testing.T) {
	const uuid = "4d002300-1350-4b4d-5231-302000000000"
	fake := newFakeVss()
	fake.devices[uuid] = map[string]any{
		"Uuid":          uuid,
		"State":         "online",
		"Options":       map[string]any{"Name": "Old"},
		"AdjustedClock": "not modeled by the client",
	}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	client := newTestClient(t, srv)

	device, err := client.GetDevice(strings.ToUpper(uuid))
	require.NoError(t, err)
	device.SetName("Kitchen")
	device.SetRotation(vssStructs.RotationLandscape)
	require.NoError(t, client.UpdateDevice(device))

	stored := fake.devices[uuid]
	assert.Equal(t, "not modeled by the client", stored["AdjustedClock"])
	assert.Equal(t, "Kitchen", stored["Options"].(map[string]any)["Name"])

	// a second identical update must not drift the remote state
	device2, err := client.GetDevice(uuid)
	require.NoError(t, err)
	device2.SetName("Kitchen")
	device2.SetRotation(vssStructs.RotationLandscape)
	require.NoError(t, client.UpdateDevice(device2))
	assert.Equal(t, stored, fake.devices[uuid])
}

// The end-to-end registration scenario: set the session, read it back, and
// the url must come back verbatim under the exact lowercase key.
func TestSetSessionRoundTrip(t *testing.T) {
	const uuid = "4d002300-1350-4b4d-5231-302000000000"
	fake := newFakeVss()
	srv := httptest.NewServer(fake)
	defer srv.Close()
	client := newTestClient(t, srv)

	err := client.SetSession("4D002300-1350-4B4D-5231-302000000000",
		"http://10.0.0.5:8124/menu.html", 3600,
		map[string]any{"DefaultDithering": "Floyd-Steinberg"})
	require.NoError(t, err)

	session, err := client.GetSession(uuid)
	require.NoError(t, err)
	assert.Equal(t, "HTML", session.Backend.Name)
	assert.Equal(t, "http://10.0.0.5:8124/menu.html", session.Backend.Fields["url"])
	assert.Equal(t, "3600", session.Backend.Fields["ReloadTimeout"])
}

// A wrong-cased fields key is accepted with a 2xx and silently dropped.
// This is the remote defect the post-PUT verification exists for; it can
// only be checked after the fact, not prevented.
func TestWrongCasedFieldKeyIsSilentlyDropped(t *testing.T) {
	const uuid = "4d002300-1350-4b4d-5231-302000000000"
	fake := newFakeVss()
	srv := httptest.NewServer(fake)
	defer srv.Close()
	client := newTestClient(t, srv)

	// hand-rolled payload the way the old inline scripts did it, with the
	// capitalized key VSS ignores
	payload := []byte(`{"Uuid":"` + uuid + `","Backend":{"Name":"HTML","Fields":{"Url":"http://10.0.0.5:8124/menu.html"}}}`)
	status, _, err := client.do(http.MethodPut, "/session/"+uuid, payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)

	session, err := client.GetSession(uuid)
	require.NoError(t, err)
	assert.Empty(t, session.Backend.Fields, "defect: accepted but not stored")
}

func TestSetSessionSurfacesFieldRejection(t *testing.T) {
	fake := newFakeVss()
	fake.dropAllFields = true
	srv := httptest.NewServer(fake)
	defer srv.Close()
	client := newTestClient(t, srv)

	err := client.SetSession("4d002300-1350-4b4d-5231-302000000000",
		"http://10.0.0.5:8124/menu.html", 3600, nil)
	assert.ErrorIs(t, err, ErrFieldsRejected)
}

func TestRestartSession(t *testing.T) {
	const uuid = "4d002300-1350-4b4d-5231-302000000000"
	fake := newFakeVss()
	fake.online[uuid] = true
	srv := httptest.NewServer(fake)
	defer srv.Close()
	client := newTestClient(t, srv)

	result, err := client.RestartSession(uuid)
	require.NoError(t, err)
	assert.Equal(t, RestartTriggered, result)
}

// HTTP 500 on restart means the panel is asleep, not that anything failed:
// the stored session applies on its next heartbeat.
func TestRestartSessionOfflineDevice(t *testing.T) {
	fake := newFakeVss()
	srv := httptest.NewServer(fake)
	defer srv.Close()
	client := newTestClient(t, srv)

	result, err := client.RestartSession("4d002300-1350-4b4d-5231-302000000000")
	require.NoError(t, err)
	assert.Equal(t, RestartDeviceOffline, result)
}
