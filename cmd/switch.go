package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var switchCmd = &cobra.Command{
	Use:   "switch",
	Short: "Read or change a device switch",
}

var switchGetCmd = &cobra.Command{
	Use:   "get <device-id> <switch>",
	Short: "Read the state of a device switch, eg. motionDetect",
	Args:  cobra.ExactArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doSwitchGet(cmd.Context(), args[0], args[1])
	},

	PreRunE: requireCredentials,
}

var switchSetCmd = &cobra.Command{
	Use:   "set <device-id> <switch> <on|off>",
	Short: "Turn a device switch on or off",
	Args:  cobra.ExactArgs(3),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doSwitchSet(cmd.Context(), args[0], args[1], args[2])
	},

	PreRunE: requireCredentials,
}

func init() {
	switchCmd.AddCommand(switchGetCmd)
	switchCmd.AddCommand(switchSetCmd)
	rootCmd.AddCommand(switchCmd)
}

func doSwitchGet(ctx context.Context, deviceID, switchName string) error {
	client := newAPIClient()
	defer client.Close()

	device, err := loadDevice(ctx, client, deviceID)
	if err != nil {
		return err
	}

	sw := device.SwitchByName(switchName)
	if sw == nil {
		return fmt.Errorf("device %s has no switch %q", deviceID, switchName)
	}

	fmt.Printf("%s (%s): %t\n", sw.Description(), sw.Name(), sw.On())
	return nil
}

func doSwitchSet(ctx context.Context, deviceID, switchName, state string) error {
	if state != "on" && state != "off" {
		return fmt.Errorf("state must be on or off, got %q", state)
	}

	client := newAPIClient()
	defer client.Close()

	device, err := loadDevice(ctx, client, deviceID)
	if err != nil {
		return err
	}

	sw := device.SwitchByName(switchName)
	if sw == nil {
		return fmt.Errorf("device %s has no switch %q", deviceID, switchName)
	}

	if state == "on" {
		err = sw.TurnOn(ctx)
	} else {
		err = sw.TurnOff(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s): %t\n", sw.Description(), sw.Name(), sw.On())
	return nil
}
