package sysmon

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

const cpuSampleInterval = 500 * time.Millisecond

// Collector gathers one Snapshot per call. Every source is a struct field so
// tests can substitute failures; a failing source logs a warning and leaves
// its section zeroed. Partial data beats no data, the write always happens.
type Collector struct {
	logger    *zap.SugaredLogger
	pihole    *PiholeClient
	utcOffset time.Duration

	cpuPercent    func(time.Duration, bool) ([]float64, error)
	virtualMemory func() (*mem.VirtualMemoryStat, error)
	diskUsage     func(string) (*disk.UsageStat, error)
	loadAvg       func() (*load.AvgStat, error)
	uptime        func() (uint64, error)
	containers    func() ([]ContainerStatus, error)
	readFile      func(string) ([]byte, error)
	now           func() time.Time
}

// NewCollector builds a collector with the real metric sources. pihole may
// be nil when no DNS blocker is deployed; its section is then zeroed.
func NewCollector(pihole *PiholeClient, utcOffsetHours int, logger *zap.SugaredLogger) *Collector {
	return &Collector{
		logger:        logger,
		pihole:        pihole,
		utcOffset:     time.Duration(utcOffsetHours) * time.Hour,
		cpuPercent:    cpu.Percent,
		virtualMemory: mem.VirtualMemory,
		diskUsage:     disk.Usage,
		loadAvg:       load.Avg,
		uptime:        host.Uptime,
		containers:    listContainers,
		readFile:      os.ReadFile,
		now:           time.Now,
	}
}

// Collect never fails as a whole.
func (c *Collector) Collect() Snapshot {
	snapshot := Snapshot{
		Updated: formatClock(c.now().UTC().Add(c.utcOffset)),
		Server:  c.collectServer(),
	}

	if c.pihole != nil {
		stats, err := c.pihole.FetchStats()
		if err != nil {
			c.logger.Warnf("Pihole stats failed, section zeroed: %v", err)
			stats = PiholeStats{Error: err.Error()}
		}
		snapshot.Pihole = stats
	}

	containers, err := c.containers()
	if err != nil {
		c.logger.Warnf("Container listing failed, section omitted: %v", err)
	} else {
		snapshot.Containers = containers
	}
	return snapshot
}

func (c *Collector) collectServer() ServerStats {
	var stats ServerStats

	if pcts, err := c.cpuPercent(cpuSampleInterval, false); err != nil || len(pcts) == 0 {
		c.logger.Warnf("CPU usage failed: %v", err)
	} else {
		stats.CpuPct = round1(pcts[0])
	}

	if vm, err := c.virtualMemory(); err != nil {
		c.logger.Warnf("Memory stats failed: %v", err)
	} else {
		stats.MemPct = round1(vm.UsedPercent)
		stats.MemUsed = vm.Used
		stats.MemTotal = vm.Total
	}

	if du, err := c.diskUsage("/"); err != nil {
		c.logger.Warnf("Disk stats failed: %v", err)
	} else {
		stats.DiskPct = round1(du.UsedPercent)
		stats.DiskUsed = du.Used
		stats.DiskTotal = du.Total
	}

	if la, err := c.loadAvg(); err != nil {
		c.logger.Warnf("Load average failed: %v", err)
	} else {
		stats.Load1 = round2(la.Load1)
		stats.Load5 = round2(la.Load5)
	}

	if up, err := c.uptime(); err != nil {
		c.logger.Warnf("Uptime failed: %v", err)
	} else {
		stats.UptimeStr = formatUptime(up)
	}

	stats.TempC = c.cpuTemperature()
	return stats
}

// cpuTemperature scans the thermal zones for the first plausible reading.
// Zero means no zone reported one; the json field is omitted then.
func (c *Collector) cpuTemperature() float64 {
	for zone := 0; zone < 10; zone++ {
		raw, err := c.readFile(fmt.Sprintf("/sys/class/thermal/thermal_zone%d/temp", zone))
		if err != nil {
			continue
		}
		milli, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		if err != nil {
			continue
		}
		temp := float64(milli) / 1000.0
		if temp > 10 && temp < 120 {
			return round1(temp)
		}
	}
	return 0
}

func formatUptime(seconds uint64) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	mins := (seconds % 3600) / 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}

// formatClock renders e.g. "3:45 pm" for the dashboard header.
func formatClock(t time.Time) string {
	return strings.ToLower(t.Format("3:04 PM"))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
