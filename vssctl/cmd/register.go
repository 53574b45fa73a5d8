package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SmshNGrab/joan-home-displays/vss-api/vssClient"
	"github.com/SmshNGrab/joan-home-displays/vss-api/vssStructs"
)

func init() {
	registerCmd.Flags().StringP("uuid", "u", "", "Device uuid (see 'vssctl list')")
	registerCmd.Flags().StringP("name", "n", "My Display", "Display name shown in the VSS admin panel")
	registerCmd.Flags().IntP("rotation", "r", vssStructs.RotationLandscape, "Rotation: 0=portrait, 2=landscape (Joan 6 wants 2)")
	registerCmd.Flags().String("url", "", "The URL the device should display (use the server's LAN IP, not localhost)")
	registerCmd.Flags().Int("reload-timeout", 3600, "Session reload timeout in seconds")
	registerCmd.Flags().String("dithering", "Floyd-Steinberg", "Default dithering mode")
	registerCmd.Flags().Int("refresh-time", 900, "Session refresh time in seconds (0 = never)")

	viper.BindPFlag("register.uuid", registerCmd.Flags().Lookup("uuid"))
	viper.BindPFlag("register.name", registerCmd.Flags().Lookup("name"))
	viper.BindPFlag("register.rotation", registerCmd.Flags().Lookup("rotation"))
	viper.BindPFlag("register.url", registerCmd.Flags().Lookup("url"))
	viper.BindPFlag("register.reloadtimeout", registerCmd.Flags().Lookup("reload-timeout"))
	viper.BindPFlag("register.dithering", registerCmd.Flags().Lookup("dithering"))
	viper.BindPFlag("register.refreshtime", registerCmd.Flags().Lookup("refresh-time"))

	rootCmd.AddCommand(registerCmd)
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a Joan device with a VSS session",
	Long: `Names the device, sets the rotation, points its session at your HTML
page, and triggers a restart to apply immediately.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		uuid := vssStructs.NormalizeUuid(viper.GetString("register.uuid"))
		displayUrl := viper.GetString("register.url")
		if uuid == "" || displayUrl == "" {
			return errors.New("both --uuid and --url are required")
		}

		client, err := newApiClient()
		if err != nil {
			return err
		}

		fmt.Printf("Checking device %s...\n", uuid)
		device, err := client.GetDevice(uuid)
		if errors.Is(err, vssClient.ErrNotFound) {
			fmt.Println("  Device not found. Is it powered on and connected to VSS?")
			fmt.Println("  Run 'vssctl list' or check the VSS admin panel.")
			return err
		}
		if err != nil {
			return err
		}
		state := device.State()
		if state == "" {
			state = "unknown"
		}
		fmt.Printf("  Found: %s state\n", state)

		name := viper.GetString("register.name")
		rotation := viper.GetInt("register.rotation")
		fmt.Printf("Setting device name to '%s' with rotation %d...\n", name, rotation)
		device.SetName(name)
		device.SetRotation(rotation)
		if err := client.UpdateDevice(device); err != nil {
			return err
		}

		fmt.Printf("Setting session URL: %s\n", displayUrl)
		options := map[string]any{
			"DefaultDithering": viper.GetString("register.dithering"),
			"RefreshTime":      viper.GetInt("register.refreshtime"),
			"DeviceAccessRule": "None",
		}
		err = client.SetSession(uuid, displayUrl, viper.GetInt("register.reloadtimeout"), options)
		if errors.Is(err, vssClient.ErrFieldsRejected) {
			fmt.Println("  WARNING: URL field is empty after save!")
			fmt.Println("  This usually means 'url' got stored under a wrong-cased key.")
		} else if err != nil {
			return err
		} else {
			fmt.Println("  Verified URL saved.")
		}

		fmt.Println("Triggering restart...")
		result, err := client.RestartSession(uuid)
		if err != nil {
			return err
		}
		switch result {
		case vssClient.RestartDeviceOffline:
			fmt.Println("  Device is offline, but config is saved — it'll apply on reconnect.")
		default:
			fmt.Println("  Restart queued. Device will update within ~60 seconds.")
		}

		fmt.Printf("\nDone! View the device in the VSS admin panel at http://%s:%d\n",
			viper.GetString("host"), viper.GetInt("port"))
		return nil
	},
}
