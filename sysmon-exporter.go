package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/SmshNGrab/joan-home-displays/sysmon"
)

var sugar *zap.SugaredLogger

func NewLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{
		"stdout", "sysmon_exporter.log",
	}
	return cfg.Build()
}

func initLogger() {
	logger, _ := NewLogger()
	sugar = logger.Sugar()
}

func init() {
	initLogger()
	initCliFlags()
	initConfig()
}

func main() {
	defer sugar.Sync() // flushes buffer, if any

	sugar.Info("Starting Sysmon-Exporter")

	var pihole *sysmon.PiholeClient
	if host := viper.GetString("pihole.host"); host != "" {
		pihole = sysmon.NewPiholeClient(host, viper.GetString("pihole.password"), sugar)
	} else {
		sugar.Info("No Pihole host configured, section stays zeroed")
	}
	collector := sysmon.NewCollector(pihole, viper.GetInt("sysmon.utcoffset"), sugar)
	output := viper.GetString("sysmon.output")

	if runOnce {
		snapshot := collector.Collect()
		if err := snapshot.WriteFile(output); err != nil {
			sugar.Fatal(err)
		}
		sugar.Infof("Updated %s at %s", output, snapshot.Updated)
		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		sugar.Info("Catch Keyboard interrupt")
		os.Exit(0)
	}()

	sugar.Info("Creating Metrics-Registry")
	// Create a non-global registry.
	reg := prometheus.NewRegistry()

	sugar.Info("Registering Metrics")
	reg.Register(collectors.NewBuildInfoCollector())
	reg.Register(collectors.NewGoCollector())
	// Create new metrics and register them using the custom registry.
	metrics := NewMetrics(reg)

	interval := time.Duration(viper.GetInt("sysmon.interval")) * time.Second
	go func() {
		for {
			snapshot := collector.Collect()
			metrics.Update(snapshot)
			if err := snapshot.WriteFile(output); err != nil {
				sugar.Errorf("Snapshot write failed: %v", err)
			} else {
				sugar.Infof("Updated %s at %s", output, snapshot.Updated)
			}
			time.Sleep(interval)
		}
	}()

	// Expose metrics and custom registry via an HTTP server
	// using the HandlerFor function. "/metrics" is the usual endpoint for that.
	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	err := http.ListenAndServe(":"+viper.GetString("metrics.port"), nil)
	if err != nil {
		sugar.Fatal(err)
	}
}
