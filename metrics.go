package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/SmshNGrab/joan-home-displays/sysmon"
)

type sysmonMetrics struct {
	cpuPct        prometheus.Gauge
	memPct        prometheus.Gauge
	diskPct       prometheus.Gauge
	load1         prometheus.Gauge
	load5         prometheus.Gauge
	tempC         prometheus.Gauge
	piholeQueries prometheus.Gauge
	piholeBlocked prometheus.Gauge
	piholePct     prometheus.Gauge
	containerUp   *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *sysmonMetrics {
	m := &sysmonMetrics{
		cpuPct: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sysmon_cpu_percent",
				Help: "Current CPU usage in percent.",
			}),
		memPct: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sysmon_memory_percent",
				Help: "Current memory usage in percent.",
			}),
		diskPct: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sysmon_disk_percent",
				Help: "Current root filesystem usage in percent.",
			}),
		load1: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sysmon_load1",
				Help: "1 minute load average.",
			}),
		load5: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sysmon_load5",
				Help: "5 minute load average.",
			}),
		tempC: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sysmon_cpu_temperature_celsius",
				Help: "CPU temperature in degree celsius.",
			}),
		piholeQueries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sysmon_pihole_queries_today",
				Help: "DNS queries handled by Pi-hole today.",
			}),
		piholeBlocked: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sysmon_pihole_blocked_today",
				Help: "DNS queries blocked by Pi-hole today.",
			}),
		piholePct: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sysmon_pihole_blocked_percent",
				Help: "Percentage of DNS queries blocked today.",
			}),
		containerUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sysmon_container_up",
				Help: "Whether the named docker container is running.",
			},
			[]string{"name"}),
	}
	reg.MustRegister(m.cpuPct)
	reg.MustRegister(m.memPct)
	reg.MustRegister(m.diskPct)
	reg.MustRegister(m.load1)
	reg.MustRegister(m.load5)
	reg.MustRegister(m.tempC)
	reg.MustRegister(m.piholeQueries)
	reg.MustRegister(m.piholeBlocked)
	reg.MustRegister(m.piholePct)
	reg.MustRegister(m.containerUp)
	return m
}

func (m *sysmonMetrics) Update(snapshot sysmon.Snapshot) {
	m.cpuPct.Set(snapshot.Server.CpuPct)
	m.memPct.Set(snapshot.Server.MemPct)
	m.diskPct.Set(snapshot.Server.DiskPct)
	m.load1.Set(snapshot.Server.Load1)
	m.load5.Set(snapshot.Server.Load5)
	m.tempC.Set(snapshot.Server.TempC)
	m.piholeQueries.Set(float64(snapshot.Pihole.QueriesToday))
	m.piholeBlocked.Set(float64(snapshot.Pihole.AdsBlockedToday))
	m.piholePct.Set(snapshot.Pihole.AdsPercentageToday)
	m.containerUp.Reset()
	for _, container := range snapshot.Containers {
		up := 0.0
		if container.Running {
			up = 1.0
		}
		m.containerUp.WithLabelValues(container.Name).Set(up)
	}
}
