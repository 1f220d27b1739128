package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jad7/imouapi/imou"
)

var sensorCmd = &cobra.Command{
	Use:   "sensor <device-id> <sensor>",
	Short: "Read a device sensor, eg. lastAlarm or online",
	Args:  cobra.ExactArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doSensor(cmd.Context(), args[0], args[1])
	},

	PreRunE: requireCredentials,
}

func init() {
	rootCmd.AddCommand(sensorCmd)
}

func doSensor(ctx context.Context, deviceID, sensorName string) error {
	client := newAPIClient()
	defer client.Close()

	device, err := loadDevice(ctx, client, deviceID)
	if err != nil {
		return err
	}

	entity := device.EntityByName(sensorName)
	if entity == nil {
		return fmt.Errorf("device %s has no sensor %q", deviceID, sensorName)
	}

	switch e := entity.(type) {
	case *imou.Sensor:
		fmt.Printf("%s (%s): %s\n", e.Description(), e.Name(), e.State())
	case *imou.BinarySensor:
		fmt.Printf("%s (%s): %t\n", e.Description(), e.Name(), e.On())
	default:
		return fmt.Errorf("%q is not a readable sensor", sensorName)
	}

	return nil
}
