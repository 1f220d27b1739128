package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jad7/imouapi/imou"
)

var (
	_deviceAsJSON bool
)

var deviceCmd = &cobra.Command{
	Use:   "device <device-id>",
	Short: "Show the details and entities of one device",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doDevice(cmd.Context(), args[0])
	},

	PreRunE: requireCredentials,
}

func init() {
	deviceCmd.Flags().BoolVar(&_deviceAsJSON, "json", false, "Return device diagnostics as JSON")
	errPanic(viper.GetViper().BindPFlag("device.json", deviceCmd.Flags().Lookup("json")))

	rootCmd.AddCommand(deviceCmd)
}

func doDevice(ctx context.Context, deviceID string) error {
	client := newAPIClient()
	defer client.Close()

	device := imou.NewDevice(client, deviceID)
	if err := device.Refresh(ctx); err != nil {
		return err
	}

	if viper.GetBool("device.json") {
		b, err := json.MarshalIndent(device.Diagnostics(), "", "    ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	fmt.Println(device.Dump())
	return nil
}

// loadDevice initializes and refreshes a device for the entity commands.
func loadDevice(ctx context.Context, client *imou.Client, deviceID string) (*imou.Device, error) {
	device := imou.NewDevice(client, deviceID)
	if err := device.Refresh(ctx); err != nil {
		return nil, err
	}
	return device, nil
}
