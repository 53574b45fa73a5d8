package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all devices registered in VSS",
	Long:  `Prints every device with uuid, state, and name. Use this to find the uuid of a newly connected device.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newApiClient()
		if err != nil {
			return err
		}
		devices, err := client.ListDevices()
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("No devices found. Make sure devices are powered on and connected to VSS.")
			return nil
		}

		fmt.Printf("%-44s %-10s %s\n", "UUID", "State", "Name")
		fmt.Println(strings.Repeat("-", 80))
		for _, device := range devices {
			state := device.State
			if state == "" {
				state = "unknown"
			}
			name := "(unnamed)"
			if n, ok := device.Options["Name"].(string); ok && n != "" {
				name = n
			}
			fmt.Printf("%-44s %-10s %s\n", device.Uuid, state, name)
		}
		return nil
	},
}
