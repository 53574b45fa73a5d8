package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/SmshNGrab/joan-home-displays/vss-api/vssClient"
)

var (
	cfgFile string
	sugar   *zap.SugaredLogger
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./config.yaml)")

	rootCmd.PersistentFlags().String("host", "localhost", "VSS server host")
	rootCmd.PersistentFlags().Int("port", 8081, "VSS API port")
	rootCmd.PersistentFlags().String("key", "", "VSS API key")
	rootCmd.PersistentFlags().String("secret", "", "VSS API secret")
	rootCmd.PersistentFlags().String("scheme", "legacy", "Signing scheme (legacy or date)")

	viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("key", rootCmd.PersistentFlags().Lookup("key"))
	viper.BindPFlag("secret", rootCmd.PersistentFlags().Lookup("secret"))
	viper.BindPFlag("scheme", rootCmd.PersistentFlags().Lookup("scheme"))
}

func initConfig() {
	logger, _ := zap.NewDevelopment()
	sugar = logger.Sugar()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetEnvPrefix("vss")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// newApiClient builds the signed client from config. Credentials come from
// flags, config file, or VSS_KEY / VSS_SECRET env vars.
func newApiClient() (*vssClient.VssApiClient, error) {
	scheme := vssClient.SchemeLegacy
	if viper.GetString("scheme") == "date" {
		scheme = vssClient.SchemeDateHeader
	}
	return vssClient.NewVssApiClient(vssClient.Config{
		Host:   viper.GetString("host"),
		Port:   viper.GetInt("port"),
		Key:    viper.GetString("key"),
		Secret: viper.GetString("secret"),
		Scheme: scheme,
	}, sugar)
}

var rootCmd = &cobra.Command{
	Use:   "vssctl",
	Short: "Manage Joan e-ink displays on a Visionect server",
	Long: `vssctl talks to the Visionect Server Suite REST API to list devices
and to point a device's session at a display page. VSS itself owns all
device state and rendering; this tool only edits configuration.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
