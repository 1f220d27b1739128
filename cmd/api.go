package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var apiCmd = &cobra.Command{
	Use:   "api <operation> [device-id] [args...]",
	Short: "Invoke one API operation and print the raw typed result",
	Long: `Low level access to the individual API operations, mainly for
troubleshooting. Supported operations: deviceBaseList, deviceOpenList,
deviceBaseDetailList, deviceOpenDetailList, listDeviceAbility,
deviceOnline, getDeviceCameraStatus, setDeviceCameraStatus,
getAlarmMessage, deviceSdcardStatus, deviceStorage, getNightVisionMode,
setNightVisionMode, getMessageCallback, setMessageCallbackOn,
setMessageCallbackOff, restartDevice.`,
	Args: cobra.MinimumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		return doAPI(cmd.Context(), args)
	},

	PreRunE: requireCredentials,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func doAPI(ctx context.Context, args []string) error {
	client := newAPIClient()
	defer client.Close()

	operation := args[0]
	args = args[1:]

	need := func(n int, usage string) error {
		if len(args) < n {
			return fmt.Errorf("usage: api %s %s", operation, usage)
		}
		return nil
	}

	var (
		result interface{}
		err    error
	)

	switch operation {
	case "deviceBaseList":
		result, err = client.DeviceList(ctx)
	case "deviceOpenList":
		result, err = client.DeviceOpenList(ctx)
	case "deviceBaseDetailList":
		if err = need(1, "<device-id>"); err == nil {
			result, err = client.DeviceDetails(ctx, args...)
		}
	case "deviceOpenDetailList":
		if err = need(1, "<device-id>"); err == nil {
			result, err = client.DeviceOpenDetails(ctx, args...)
		}
	case "listDeviceAbility":
		if err = need(1, "<device-id>"); err == nil {
			result, err = client.DeviceAbilities(ctx, args...)
		}
	case "deviceOnline":
		if err = need(1, "<device-id>"); err == nil {
			result, err = client.DeviceOnline(ctx, args[0])
		}
	case "getDeviceCameraStatus":
		if err = need(2, "<device-id> <enable-type>"); err == nil {
			result, err = client.CameraStatus(ctx, args[0], args[1])
		}
	case "setDeviceCameraStatus":
		if err = need(3, "<device-id> <enable-type> <on|off>"); err == nil {
			err = client.SetCameraStatus(ctx, args[0], args[1], args[2] == "on")
		}
	case "getAlarmMessage":
		if err = need(1, "<device-id>"); err == nil {
			result, err = client.AlarmMessages(ctx, args[0], 10)
		}
	case "deviceSdcardStatus":
		if err = need(1, "<device-id>"); err == nil {
			result, err = client.SDCardStatus(ctx, args[0])
		}
	case "deviceStorage":
		if err = need(1, "<device-id>"); err == nil {
			result, err = client.Storage(ctx, args[0])
		}
	case "getNightVisionMode":
		if err = need(1, "<device-id>"); err == nil {
			result, err = client.NightVisionMode(ctx, args[0])
		}
	case "setNightVisionMode":
		if err = need(2, "<device-id> <mode>"); err == nil {
			err = client.SetNightVisionMode(ctx, args[0], args[1])
		}
	case "getMessageCallback":
		result, err = client.MessageCallback(ctx)
	case "setMessageCallbackOn":
		if err = need(1, "<url>"); err == nil {
			err = client.SetMessageCallbackOn(ctx, args[0])
		}
	case "setMessageCallbackOff":
		err = client.SetMessageCallbackOff(ctx)
	case "restartDevice":
		if err = need(1, "<device-id>"); err == nil {
			err = client.RestartDevice(ctx, args[0])
		}
	default:
		return fmt.Errorf("unknown operation %q", operation)
	}

	if err != nil {
		return err
	}

	if result == nil {
		fmt.Println("{}")
		return nil
	}

	b, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
