package imou

import "context"

// API is the operation set of the Imou Life OpenAPI used by the device
// layer. *Client implements it; tests substitute fakes.
type API interface {
	DeviceList(ctx context.Context) (*DeviceListResult, error)
	DeviceOpenList(ctx context.Context) (*DeviceListResult, error)
	DeviceDetails(ctx context.Context, deviceIDs ...string) (*DeviceDetailsResult, error)
	DeviceOpenDetails(ctx context.Context, deviceIDs ...string) (*DeviceDetailsResult, error)
	DeviceAbilities(ctx context.Context, deviceIDs ...string) (*DeviceAbilitiesResult, error)
	DeviceOnline(ctx context.Context, deviceID string) (*OnlineResult, error)
	CameraStatus(ctx context.Context, deviceID, enableType string) (*SwitchStatusResult, error)
	SetCameraStatus(ctx context.Context, deviceID, enableType string, enable bool) error
	AlarmMessages(ctx context.Context, deviceID string, count int) (*AlarmListResult, error)
	SDCardStatus(ctx context.Context, deviceID string) (*SDCardStatusResult, error)
	Storage(ctx context.Context, deviceID string) (*StorageResult, error)
	NightVisionMode(ctx context.Context, deviceID string) (*NightVisionResult, error)
	SetNightVisionMode(ctx context.Context, deviceID, mode string) error
	MessageCallback(ctx context.Context) (*MessageCallbackResult, error)
	SetMessageCallbackOn(ctx context.Context, url string) error
	SetMessageCallbackOff(ctx context.Context) error
	RestartDevice(ctx context.Context, deviceID string) error
}

var _ API = (*Client)(nil)
