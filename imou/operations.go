package imou

import "context"

/*
 *   One method per supported API operation. Each obtains a valid token,
 *   sends a single signed request and decodes the typed result.
 */

// DeviceList enumerates the devices bound to or shared with the account.
func (c *Client) DeviceList(ctx context.Context) (*DeviceListResult, error) {
	out := &DeviceListResult{}
	err := c.call(ctx, "deviceBaseList", map[string]interface{}{
		"bindId": -1,
		"limit":  50,
		"type":   "bindAndShare",
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeviceOpenList is the variant of DeviceList for open-protocol devices.
func (c *Client) DeviceOpenList(ctx context.Context) (*DeviceListResult, error) {
	out := &DeviceListResult{}
	err := c.call(ctx, "deviceOpenList", map[string]interface{}{
		"bindId": -1,
		"limit":  50,
		"type":   "bindAndShare",
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeviceDetails fetches the base details for the given device ids.
func (c *Client) DeviceDetails(ctx context.Context, deviceIDs ...string) (*DeviceDetailsResult, error) {
	out := &DeviceDetailsResult{}
	err := c.call(ctx, "deviceBaseDetailList", map[string]interface{}{
		"deviceList": deviceQuery(deviceIDs),
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeviceOpenDetails is the variant of DeviceDetails for open-protocol devices.
func (c *Client) DeviceOpenDetails(ctx context.Context, deviceIDs ...string) (*DeviceDetailsResult, error) {
	out := &DeviceDetailsResult{}
	err := c.call(ctx, "deviceOpenDetailList", map[string]interface{}{
		"deviceList": deviceQuery(deviceIDs),
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeviceAbilities lists the ability set of the given devices.
func (c *Client) DeviceAbilities(ctx context.Context, deviceIDs ...string) (*DeviceAbilitiesResult, error) {
	out := &DeviceAbilitiesResult{}
	err := c.call(ctx, "listDeviceAbility", map[string]interface{}{
		"deviceList": deviceQuery(deviceIDs),
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeviceOnline queries the cloud connectivity state of a device.
func (c *Client) DeviceOnline(ctx context.Context, deviceID string) (*OnlineResult, error) {
	out := &OnlineResult{}
	err := c.call(ctx, "deviceOnline", map[string]interface{}{
		"deviceId": deviceID,
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CameraStatus reads the on/off state of a device switch, for example
// "motionDetect" or "closeCamera" (see Switches for the known set).
func (c *Client) CameraStatus(ctx context.Context, deviceID, enableType string) (*SwitchStatusResult, error) {
	out := &SwitchStatusResult{}
	err := c.call(ctx, "getDeviceCameraStatus", map[string]interface{}{
		"deviceId":   deviceID,
		"enableType": enableType,
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetCameraStatus switches a device feature on or off.
func (c *Client) SetCameraStatus(ctx context.Context, deviceID, enableType string, enable bool) error {
	return c.call(ctx, "setDeviceCameraStatus", map[string]interface{}{
		"deviceId":   deviceID,
		"enableType": enableType,
		"enable":     enable,
	}, nil)
}

// AlarmMessages returns the most recent alarms raised by a device.
func (c *Client) AlarmMessages(ctx context.Context, deviceID string, count int) (*AlarmListResult, error) {
	if count <= 0 {
		count = 10
	}
	out := &AlarmListResult{}
	err := c.call(ctx, "getAlarmMessage", map[string]interface{}{
		"deviceId":  deviceID,
		"channelId": "0",
		"count":     count,
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SDCardStatus reports the health of the device SD card.
func (c *Client) SDCardStatus(ctx context.Context, deviceID string) (*SDCardStatusResult, error) {
	out := &SDCardStatusResult{}
	err := c.call(ctx, "deviceSdcardStatus", map[string]interface{}{
		"deviceId": deviceID,
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Storage reports total and used bytes of the device local storage.
func (c *Client) Storage(ctx context.Context, deviceID string) (*StorageResult, error) {
	out := &StorageResult{}
	err := c.call(ctx, "deviceStorage", map[string]interface{}{
		"deviceId": deviceID,
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NightVisionMode reads the selected night vision mode and the modes the
// device supports.
func (c *Client) NightVisionMode(ctx context.Context, deviceID string) (*NightVisionResult, error) {
	out := &NightVisionResult{}
	err := c.call(ctx, "getNightVisionMode", map[string]interface{}{
		"deviceId":  deviceID,
		"channelId": "0",
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetNightVisionMode selects a night vision mode.
func (c *Client) SetNightVisionMode(ctx context.Context, deviceID, mode string) error {
	return c.call(ctx, "setNightVisionMode", map[string]interface{}{
		"deviceId":  deviceID,
		"channelId": "0",
		"mode":      mode,
	}, nil)
}

// MessageCallback reads the push notification callback registration of
// the application.
func (c *Client) MessageCallback(ctx context.Context) (*MessageCallbackResult, error) {
	out := &MessageCallbackResult{}
	err := c.call(ctx, "getMessageCallback", map[string]interface{}{}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetMessageCallbackOn registers url to receive alarm and device status
// push notifications.
func (c *Client) SetMessageCallbackOn(ctx context.Context, url string) error {
	return c.call(ctx, "setMessageCallback", map[string]interface{}{
		"status":       "on",
		"callbackFlag": "deviceStatus,alarm",
		"callbackUrl":  url,
	}, nil)
}

// SetMessageCallbackOff disables push notifications.
func (c *Client) SetMessageCallbackOff(ctx context.Context) error {
	return c.call(ctx, "setMessageCallback", map[string]interface{}{
		"status": "off",
	}, nil)
}

// RestartDevice reboots the device.
func (c *Client) RestartDevice(ctx context.Context, deviceID string) error {
	return c.call(ctx, "restartDevice", map[string]interface{}{
		"deviceId": deviceID,
	}, nil)
}

// deviceQuery builds the deviceList parameter shared by the detail and
// ability endpoints.
func deviceQuery(deviceIDs []string) []map[string]string {
	list := make([]map[string]string, 0, len(deviceIDs))
	for _, id := range deviceIDs {
		list = append(list, map[string]string{
			"deviceId":    id,
			"channelList": "0",
		})
	}
	return list
}
