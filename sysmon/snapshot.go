package sysmon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot is the document the dashboard page polls. It is fully replaced on
// every collection cycle; no history is kept.
type Snapshot struct {
	Updated    string            `json:"updated"`
	Pihole     PiholeStats       `json:"pihole"`
	Server     ServerStats       `json:"server"`
	Containers []ContainerStatus `json:"containers"`
}

type ServerStats struct {
	CpuPct    float64 `json:"cpu_pct"`
	MemPct    float64 `json:"mem_pct"`
	MemUsed   uint64  `json:"mem_used"`
	MemTotal  uint64  `json:"mem_total"`
	DiskPct   float64 `json:"disk_pct"`
	DiskUsed  uint64  `json:"disk_used"`
	DiskTotal uint64  `json:"disk_total"`
	Load1     float64 `json:"load_1"`
	Load5     float64 `json:"load_5"`
	UptimeStr string  `json:"uptime_str"`
	TempC     float64 `json:"temp_c,omitempty"`
}

type PiholeStats struct {
	QueriesToday        int64   `json:"queries_today"`
	AdsBlockedToday     int64   `json:"ads_blocked_today"`
	AdsPercentageToday  float64 `json:"ads_percentage_today"`
	DomainsBeingBlocked int64   `json:"domains_being_blocked"`
	QueriesForwarded    int64   `json:"queries_forwarded"`
	QueriesCached       int64   `json:"queries_cached"`
	UniqueClients       int64   `json:"unique_clients"`
	Error               string  `json:"error,omitempty"`
}

type ContainerStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Running bool   `json:"running"`
}

// WriteFile publishes the snapshot via temp-file-then-rename so the polling
// page never reads a half-written document.
func (s Snapshot) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publishing snapshot: %w", err)
	}
	return nil
}
