package imou

import "encoding/json"

/*
 *   Typed result structures, one per API operation.
 */

// DeviceSummary is one element of a device list response.
type DeviceSummary struct {
	DeviceID    string           `json:"deviceId"`
	ChannelList []ChannelSummary `json:"channelList,omitempty"`
}

// ChannelSummary describes one channel of a multi-channel device.
type ChannelSummary struct {
	ChannelID   string `json:"channelId"`
	ChannelName string `json:"channelName"`
}

// DeviceListResult is returned by DeviceList and DeviceOpenList.
type DeviceListResult struct {
	Count      int             `json:"count"`
	DeviceList []DeviceSummary `json:"deviceList"`
}

// DeviceDetail carries the base details of a device.
type DeviceDetail struct {
	DeviceID     string `json:"deviceId"`
	Name         string `json:"name"`
	DeviceModel  string `json:"deviceModel"`
	Catalog      string `json:"catalog"`
	Version      string `json:"version"`
	Status       string `json:"status"`
	Ability      string `json:"ability"`
	Brand        string `json:"brand,omitempty"`
	CanBeUpgrade bool   `json:"canBeUpgrade,omitempty"`
}

// DeviceDetailsResult is returned by DeviceDetails and DeviceOpenDetails.
type DeviceDetailsResult struct {
	Count      int            `json:"count"`
	DeviceList []DeviceDetail `json:"deviceList"`
}

// DeviceAbility is returned per device by DeviceAbilities. The vendor
// shape varies by firmware so the channel payload is kept raw.
type DeviceAbility struct {
	DeviceID string          `json:"deviceId"`
	Ability  string          `json:"ability"`
	Channels json.RawMessage `json:"channels,omitempty"`
}

// DeviceAbilitiesResult is returned by DeviceAbilities.
type DeviceAbilitiesResult struct {
	DeviceList []DeviceAbility `json:"deviceList"`
}

// OnlineResult is returned by DeviceOnline. OnLine is "1" when the
// device is connected to the cloud.
type OnlineResult struct {
	DeviceID string `json:"deviceId"`
	OnLine   string `json:"onLine"`
}

// Online reports whether the device is connected.
func (r *OnlineResult) Online() bool {
	return r.OnLine == "1"
}

// SwitchStatusResult is returned by CameraStatus; Status is "on" or "off".
type SwitchStatusResult struct {
	Status string `json:"status"`
}

// On reports whether the switch is enabled.
func (r *SwitchStatusResult) On() bool {
	return r.Status == "on"
}

// Alarm is a single entry of an alarm message list. Time is epoch seconds.
type Alarm struct {
	AlarmID   string `json:"alarmId"`
	MsgType   string `json:"msgType"`
	Time      int64  `json:"time"`
	LocalDate string `json:"localDate,omitempty"`
	DeviceID  string `json:"deviceId,omitempty"`
	ChannelID string `json:"channelId,omitempty"`
}

// AlarmListResult is returned by AlarmMessages, most recent first.
type AlarmListResult struct {
	Count  int     `json:"count"`
	Alarms []Alarm `json:"alarms"`
}

// SDCardStatusResult is returned by SDCardStatus; Status is "normal",
// "abnormal" or "nocard".
type SDCardStatusResult struct {
	Status string `json:"status"`
}

// StorageResult is returned by Storage.
type StorageResult struct {
	TotalBytes int64 `json:"totalBytes"`
	UsedBytes  int64 `json:"usedBytes"`
}

// UsedPercent returns how much of the storage is used, 0-100.
func (r *StorageResult) UsedPercent() int {
	if r.TotalBytes <= 0 {
		return 0
	}
	return int(r.UsedBytes * 100 / r.TotalBytes)
}

// NightVisionResult is returned by NightVisionMode.
type NightVisionResult struct {
	Mode  string   `json:"mode"`
	Modes []string `json:"modes"`
}

// MessageCallbackResult is returned by MessageCallback.
type MessageCallbackResult struct {
	CallbackURL  string `json:"callbackUrl"`
	Status       string `json:"status"`
	CallbackFlag string `json:"callbackFlag,omitempty"`
}
