package main

import (
	"bytes"
	"flag"
	"os"
	"strings"

	"github.com/spf13/viper"
)

var (
	configPath string
	runOnce    bool
)

func initCliFlags() {
	flag.StringVar(&configPath, "configFile", "config.yaml", "Path to the config.yaml File.")
	flag.BoolVar(&runOnce, "once", false, "Collect and write a single snapshot, then exit (cron mode).")
	flag.Parse()
}

func initConfig() {
	// set defaults
	viper.SetDefault("pihole.host", "localhost")
	viper.SetDefault("pihole.password", "")
	viper.SetDefault("sysmon.output", "sysmon.json")
	viper.SetDefault("sysmon.interval", 300)
	viper.SetDefault("sysmon.utcoffset", 0)
	viper.SetDefault("metrics.port", 9124)
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("sysmon")
	viper.SetConfigType("yaml")
	cfg, err := os.ReadFile(configPath)
	if err != nil {
		sugar.Info("No configuration file found. Using Default config")
	}
	if err := viper.ReadConfig(bytes.NewBuffer(cfg)); err != nil {
		sugar.Errorf("Error while reading config file: %v. Using Default config", err)
	}
	sugar.Infof("Configuration from %v", viper.AllSettings())
}
