package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jad7/imouapi/imou"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Read or change a device select, eg. nightVisionMode",
}

var selectGetCmd = &cobra.Command{
	Use:   "get <device-id> <select>",
	Short: "Show the selected option and the available options",
	Args:  cobra.ExactArgs(2),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doSelectGet(cmd.Context(), args[0], args[1])
	},

	PreRunE: requireCredentials,
}

var selectSetCmd = &cobra.Command{
	Use:   "set <device-id> <select> <option>",
	Short: "Change the selected option",
	Args:  cobra.ExactArgs(3),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doSelectSet(cmd.Context(), args[0], args[1], args[2])
	},

	PreRunE: requireCredentials,
}

func init() {
	selectCmd.AddCommand(selectGetCmd)
	selectCmd.AddCommand(selectSetCmd)
	rootCmd.AddCommand(selectCmd)
}

func findSelect(ctx context.Context, client *imou.Client, deviceID, name string) (*imou.Select, error) {
	device, err := loadDevice(ctx, client, deviceID)
	if err != nil {
		return nil, err
	}

	entity := device.EntityByName(name)
	sel, ok := entity.(*imou.Select)
	if !ok {
		return nil, fmt.Errorf("device %s has no select %q", deviceID, name)
	}
	return sel, nil
}

func doSelectGet(ctx context.Context, deviceID, name string) error {
	client := newAPIClient()
	defer client.Close()

	sel, err := findSelect(ctx, client, deviceID, name)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s): %s [available: %s]\n",
		sel.Description(), sel.Name(), sel.Current(), strings.Join(sel.Options(), ", "))
	return nil
}

func doSelectSet(ctx context.Context, deviceID, name, option string) error {
	client := newAPIClient()
	defer client.Close()

	sel, err := findSelect(ctx, client, deviceID, name)
	if err != nil {
		return err
	}

	if err := sel.SelectOption(ctx, option); err != nil {
		return err
	}

	fmt.Printf("%s (%s): %s\n", sel.Description(), sel.Name(), sel.Current())
	return nil
}
