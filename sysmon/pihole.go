package sysmon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// PiholeClient talks to the Pi-hole v6 API, which wants a session token from
// /auth on every stats call and a logout afterwards (sessions are a limited
// resource on the Pi-hole side).
type PiholeClient struct {
	baseUrl  string
	password string
	client   http.Client
	logger   *zap.SugaredLogger
}

func NewPiholeClient(host string, password string, logger *zap.SugaredLogger) *PiholeClient {
	return &PiholeClient{
		baseUrl:  "http://" + host + "/api",
		password: password,
		client:   http.Client{Timeout: 5 * time.Second},
		logger:   logger,
	}
}

type piholeAuth struct {
	Session struct {
		Sid string `json:"sid"`
	} `json:"session"`
}

// piholeSummary mirrors /stats/summary. The counters are grouped: totals
// under "queries", the blocklist size under "gravity", clients under
// "clients". The gravity nesting is part of the contract, not a flat key.
type piholeSummary struct {
	Queries struct {
		Total          int64   `json:"total"`
		Blocked        int64   `json:"blocked"`
		PercentBlocked float64 `json:"percent_blocked"`
		Forwarded      int64   `json:"forwarded"`
		Cached         int64   `json:"cached"`
	} `json:"queries"`
	Gravity struct {
		DomainsBeingBlocked int64 `json:"domains_being_blocked"`
	} `json:"gravity"`
	Clients struct {
		Active int64 `json:"active"`
	} `json:"clients"`
}

// FetchStats authenticates, reads the summary, and logs out.
func (p *PiholeClient) FetchStats() (PiholeStats, error) {
	sid, err := p.authenticate()
	if err != nil {
		return PiholeStats{}, err
	}
	defer p.logout(sid)

	req, err := http.NewRequest(http.MethodGet, p.baseUrl+"/stats/summary", nil)
	if err != nil {
		return PiholeStats{}, err
	}
	req.Header.Set("sid", sid)
	res, err := p.client.Do(req)
	if err != nil {
		return PiholeStats{}, fmt.Errorf("pihole summary: %w", err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return PiholeStats{}, fmt.Errorf("pihole summary: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return PiholeStats{}, fmt.Errorf("pihole summary: HTTP %d", res.StatusCode)
	}
	var summary piholeSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return PiholeStats{}, fmt.Errorf("pihole summary: %w", err)
	}
	return PiholeStats{
		QueriesToday:        summary.Queries.Total,
		AdsBlockedToday:     summary.Queries.Blocked,
		AdsPercentageToday:  math.Round(summary.Queries.PercentBlocked*100) / 100,
		DomainsBeingBlocked: summary.Gravity.DomainsBeingBlocked,
		QueriesForwarded:    summary.Queries.Forwarded,
		QueriesCached:       summary.Queries.Cached,
		UniqueClients:       summary.Clients.Active,
	}, nil
}

func (p *PiholeClient) authenticate() (string, error) {
	payload, err := json.Marshal(map[string]string{"password": p.password})
	if err != nil {
		return "", err
	}
	res, err := p.client.Post(p.baseUrl+"/auth", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("pihole auth: %w", err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("pihole auth: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pihole auth: HTTP %d", res.StatusCode)
	}
	var auth piholeAuth
	if err := json.Unmarshal(body, &auth); err != nil {
		return "", fmt.Errorf("pihole auth: %w", err)
	}
	if auth.Session.Sid == "" {
		return "", fmt.Errorf("pihole auth: no session id in response")
	}
	return auth.Session.Sid, nil
}

func (p *PiholeClient) logout(sid string) {
	req, err := http.NewRequest(http.MethodDelete, p.baseUrl+"/auth", nil)
	if err != nil {
		return
	}
	req.Header.Set("sid", sid)
	res, err := p.client.Do(req)
	if err != nil {
		p.logger.Warnf("Pihole logout failed: %v", err)
		return
	}
	res.Body.Close()
}
