package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jad7/imouapi/imou"
)

var buttonCmd = &cobra.Command{
	Use:   "button <device-id> <button>",
	Short: "Press a device button, eg. restartDevice",
	Args:  cobra.ExactArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doButton(cmd.Context(), args[0], args[1])
	},

	PreRunE: requireCredentials,
}

func init() {
	rootCmd.AddCommand(buttonCmd)
}

func doButton(ctx context.Context, deviceID, name string) error {
	client := newAPIClient()
	defer client.Close()

	device, err := loadDevice(ctx, client, deviceID)
	if err != nil {
		return err
	}

	entity := device.EntityByName(name)
	button, ok := entity.(*imou.Button)
	if !ok {
		return fmt.Errorf("device %s has no button %q", deviceID, name)
	}

	if err := button.Press(ctx); err != nil {
		return err
	}

	fmt.Printf("pressed %s (%s)\n", button.Description(), button.Name())
	return nil
}
