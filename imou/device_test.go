package imou

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDeviceID = "8L0DF93PAZ55F2A"

// respondDetail installs a realistic detail payload for one camera with
// local storage and switchable night vision.
func respondDetail(f *fakeVendor) {
	f.respond("deviceBaseDetailList", `{
		"count": 1,
		"deviceList": [{
			"deviceId": "8L0DF93PAZ55F2A",
			"name": "My Camera",
			"deviceModel": "IPC-C22C",
			"catalog": "IPC",
			"version": "2.680.0000000.25.R.220527",
			"status": "online",
			"ability": "WLAN,MT,HSC,CloseCamera,WhiteLight,LocalStorage,NVM,Siren"
		}]
	}`)
}

// respondEntityState installs payloads for every endpoint Refresh hits.
func respondEntityState(f *fakeVendor) {
	f.respond("deviceOnline", `{"deviceId":"8L0DF93PAZ55F2A","onLine":"1"}`)
	f.respond("getDeviceCameraStatus", `{"status":"on"}`)
	f.respond("getAlarmMessage", `{"count":1,"alarms":[{"alarmId":"a1","msgType":"human","time":1664127393}]}`)
	f.respond("deviceSdcardStatus", `{"status":"normal"}`)
	f.respond("deviceStorage", `{"totalBytes":64000000000,"usedBytes":32000000000}`)
	f.respond("getNightVisionMode", `{"mode":"Intelligent","modes":["Intelligent","FullColor","Infrared","Off"]}`)
}

func TestDeviceInitialize(t *testing.T) {
	f := newFakeVendor(t)
	respondDetail(f)
	c := f.client()
	defer c.Close()

	device := NewDevice(c, testDeviceID)
	require.False(t, device.Initialized())

	err := device.Initialize(context.Background())
	require.NoError(t, err)

	assert.True(t, device.Initialized())
	assert.Equal(t, "My Camera", device.Name())
	assert.Equal(t, "IPC-C22C", device.Model())
	assert.Equal(t, "IPC", device.Catalog())
	assert.Equal(t, "2.680.0000000.25.R.220527", device.Firmware())
	assert.Equal(t, "Imou", device.Manufacturer())
	assert.True(t, device.Online())

	// motionDetect is always available even when not advertised
	assert.Contains(t, device.Capabilities(), "motionDetect")
	assert.Contains(t, device.Capabilities(), "NVM")

	// switches come out in a stable, sorted order
	var switchNames []string
	for _, s := range device.Switches() {
		switchNames = append(switchNames, s.Name())
	}
	assert.Equal(t, []string{"closeCamera", "motionDetect", "whiteLight"}, switchNames)

	var sensorNames []string
	for _, s := range device.Sensors() {
		sensorNames = append(sensorNames, s.Name())
	}
	assert.ElementsMatch(t, []string{"lastAlarm", "storageUsed"}, sensorNames)

	require.Len(t, device.BinarySensors(), 1)
	assert.Equal(t, "online", device.BinarySensors()[0].Name())

	require.Len(t, device.Selects(), 1)
	assert.Equal(t, "nightVisionMode", device.Selects()[0].Name())

	var buttonNames []string
	for _, b := range device.Buttons() {
		buttonNames = append(buttonNames, b.Name())
	}
	assert.ElementsMatch(t, []string{"restartDevice", "refreshData"}, buttonNames)

	assert.NotNil(t, device.EntityByName("lastAlarm"))
	assert.Nil(t, device.EntityByName("noSuchEntity"))
	assert.NotNil(t, device.SwitchByName("motionDetect"))
}

func TestDeviceInitialize_UnknownDevice(t *testing.T) {
	f := newFakeVendor(t)
	f.respond("deviceBaseDetailList", `{"count":0,"deviceList":[]}`)
	c := f.client()
	defer c.Close()

	device := NewDevice(c, "no-such-device")
	err := device.Initialize(context.Background())
	require.Error(t, err)

	var invErr *InvalidResponseError
	assert.True(t, errors.As(err, &invErr), "want InvalidResponseError, got %T: %v", err, err)
	assert.False(t, device.Initialized())
}

func TestDeviceRefresh(t *testing.T) {
	f := newFakeVendor(t)
	respondDetail(f)
	respondEntityState(f)
	c := f.client()
	defer c.Close()

	device := NewDevice(c, testDeviceID)
	ctx := context.Background()

	// Refresh initializes on demand
	err := device.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, device.Initialized())
	assert.True(t, device.Online())

	last := device.EntityByName("lastAlarm").(*Sensor)
	assert.Equal(t, "2022-09-25T17:36:33Z", last.State())
	assert.True(t, last.Updated())

	storage := device.EntityByName("storageUsed").(*Sensor)
	assert.Equal(t, "50", storage.State())

	// the online sensor is fed from the refresh query itself
	online := device.BinarySensors()[0]
	assert.True(t, online.On())
	assert.True(t, online.Updated())
	assert.Equal(t, 1, f.callCount("deviceOnline"), "one online query per refresh")

	motion := device.SwitchByName("motionDetect")
	assert.True(t, motion.On())
	assert.True(t, motion.Updated())

	nvm := device.Selects()[0]
	assert.Equal(t, "Intelligent", nvm.Current())
	assert.Equal(t, []string{"Intelligent", "FullColor", "Infrared", "Off"}, nvm.Options())
}

func TestDeviceRefresh_OfflineSkipsEntities(t *testing.T) {
	f := newFakeVendor(t)
	respondDetail(f)
	f.respond("deviceOnline", `{"deviceId":"8L0DF93PAZ55F2A","onLine":"0"}`)
	c := f.client()
	defer c.Close()

	device := NewDevice(c, testDeviceID)
	err := device.Refresh(context.Background())
	require.NoError(t, err)

	assert.False(t, device.Online())
	assert.Equal(t, 0, f.callCount("getDeviceCameraStatus"), "offline devices must not be polled")
	assert.Equal(t, 0, f.callCount("getAlarmMessage"))
	assert.False(t, device.SwitchByName("motionDetect").Updated())

	// the online sensor still reflects the offline state
	online := device.BinarySensors()[0]
	assert.False(t, online.On())
	assert.True(t, online.Updated())
}

func TestDeviceRefresh_Disabled(t *testing.T) {
	f := newFakeVendor(t)
	c := f.client()
	defer c.Close()

	device := NewDevice(c, testDeviceID)
	device.SetEnabled(false)

	require.NoError(t, device.Refresh(context.Background()))
	assert.Equal(t, 0, f.callCount("deviceBaseDetailList"))
	assert.Equal(t, 0, f.callCount("deviceOnline"))
}

func TestSwitch_TurnOnOff(t *testing.T) {
	f := newFakeVendor(t)
	c := f.client()
	defer c.Close()

	s := NewSwitch(c, testDeviceID, "My Camera", "motionDetect")
	ctx := context.Background()

	require.NoError(t, s.TurnOn(ctx))
	assert.True(t, s.On())

	f.mu.Lock()
	env := f.lastRequest["setDeviceCameraStatus"]
	f.mu.Unlock()
	params := env.Params.(map[string]interface{})
	assert.Equal(t, testDeviceID, params["deviceId"])
	assert.Equal(t, "motionDetect", params["enableType"])
	assert.Equal(t, true, params["enable"])

	require.NoError(t, s.TurnOff(ctx))
	assert.False(t, s.On())

	f.mu.Lock()
	env = f.lastRequest["setDeviceCameraStatus"]
	f.mu.Unlock()
	params = env.Params.(map[string]interface{})
	assert.Equal(t, false, params["enable"])
}

func TestSwitch_ToggleRequiresUpdate(t *testing.T) {
	f := newFakeVendor(t)
	f.respond("getDeviceCameraStatus", `{"status":"off"}`)
	c := f.client()
	defer c.Close()

	s := NewSwitch(c, testDeviceID, "My Camera", "motionDetect")
	ctx := context.Background()

	// state unknown: toggle is a no-op
	require.NoError(t, s.Toggle(ctx))
	assert.Equal(t, 0, f.callCount("setDeviceCameraStatus"))

	require.NoError(t, s.Update(ctx))
	assert.False(t, s.On())

	require.NoError(t, s.Toggle(ctx))
	assert.True(t, s.On())
	assert.Equal(t, 1, f.callCount("setDeviceCameraStatus"))
}

func TestSwitch_PushNotifications(t *testing.T) {
	f := newFakeVendor(t)
	f.respond("getMessageCallback", `{"callbackUrl":"http://cb.example.com/imou","status":"on"}`)
	c := f.client()
	defer c.Close()

	s := NewSwitch(c, testDeviceID, "My Camera", "pushNotifications")
	ctx := context.Background()

	// registering requires a callback URL
	err := s.TurnOn(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, f.callCount("setMessageCallback"))

	s.SetCallbackURL("http://cb.example.com/imou")
	require.NoError(t, s.TurnOn(ctx))
	assert.True(t, s.On())

	f.mu.Lock()
	env := f.lastRequest["setMessageCallback"]
	f.mu.Unlock()
	params := env.Params.(map[string]interface{})
	assert.Equal(t, "on", params["status"])
	assert.Equal(t, "http://cb.example.com/imou", params["callbackUrl"])
	assert.Equal(t, "deviceStatus,alarm", params["callbackFlag"])

	require.NoError(t, s.TurnOff(ctx))
	assert.False(t, s.On())

	f.mu.Lock()
	env = f.lastRequest["setMessageCallback"]
	f.mu.Unlock()
	params = env.Params.(map[string]interface{})
	assert.Equal(t, "off", params["status"])

	// state is read back from the registration, not the camera
	require.NoError(t, s.Update(ctx))
	assert.True(t, s.On())
	assert.Equal(t, 0, f.callCount("getDeviceCameraStatus"))
}

func TestSelect_NightVisionMode(t *testing.T) {
	f := newFakeVendor(t)
	f.respond("getNightVisionMode", `{"mode":"Infrared","modes":["Intelligent","FullColor","Infrared","Off"]}`)
	c := f.client()
	defer c.Close()

	s := NewSelect(c, testDeviceID, "My Camera", "nightVisionMode")
	ctx := context.Background()

	require.NoError(t, s.Update(ctx))
	assert.Equal(t, "Infrared", s.Current())
	assert.Len(t, s.Options(), 4)

	require.NoError(t, s.SelectOption(ctx, "FullColor"))
	assert.Equal(t, "FullColor", s.Current())

	f.mu.Lock()
	env := f.lastRequest["setNightVisionMode"]
	f.mu.Unlock()
	params := env.Params.(map[string]interface{})
	assert.Equal(t, "FullColor", params["mode"])
}

func TestSelect_MalformedMode(t *testing.T) {
	f := newFakeVendor(t)
	f.respond("getNightVisionMode", `{"mode":"","modes":[]}`)
	c := f.client()
	defer c.Close()

	s := NewSelect(c, testDeviceID, "My Camera", "nightVisionMode")
	err := s.Update(context.Background())
	require.Error(t, err)

	var invErr *InvalidResponseError
	assert.True(t, errors.As(err, &invErr), "want InvalidResponseError, got %T: %v", err, err)
}

func TestButton_Restart(t *testing.T) {
	f := newFakeVendor(t)
	c := f.client()
	defer c.Close()

	b := NewButton(c, testDeviceID, "My Camera", "restartDevice")
	require.NoError(t, b.Press(context.Background()))
	assert.Equal(t, 1, f.callCount("restartDevice"))
}

func TestButton_RefreshData(t *testing.T) {
	f := newFakeVendor(t)
	respondDetail(f)
	respondEntityState(f)
	c := f.client()
	defer c.Close()

	device := NewDevice(c, testDeviceID)
	require.NoError(t, device.Initialize(context.Background()))

	refresh := device.EntityByName("refreshData").(*Button)
	require.NoError(t, refresh.Press(context.Background()))

	assert.Equal(t, 1, f.callCount("deviceOnline"))
	assert.True(t, device.SwitchByName("motionDetect").Updated())
}

func TestSensor_StorageAbnormalCard(t *testing.T) {
	f := newFakeVendor(t)
	f.respond("deviceSdcardStatus", `{"status":"abnormal"}`)
	c := f.client()
	defer c.Close()

	s := NewSensor(c, testDeviceID, "My Camera", "storageUsed")
	require.NoError(t, s.Update(context.Background()))

	assert.Equal(t, "", s.State(), "usage is unknown when the card is unhealthy")
	assert.Equal(t, 0, f.callCount("deviceStorage"))
}

func TestDeviceDiagnostics(t *testing.T) {
	f := newFakeVendor(t)
	respondDetail(f)
	c := f.client()
	defer c.Close()

	device := NewDevice(c, testDeviceID)
	require.NoError(t, device.Initialize(context.Background()))

	diag := device.Diagnostics()
	assert.Equal(t, testDeviceID, diag.DeviceID)
	assert.Equal(t, "My Camera", diag.Name)
	assert.NotEmpty(t, diag.Capabilities)
	assert.NotEmpty(t, diag.Entities)

	dump := device.Dump()
	assert.Contains(t, dump, testDeviceID)
	assert.Contains(t, dump, "My Camera")
	assert.Contains(t, dump, "motionDetect")
}

func TestDiscover(t *testing.T) {
	f := newFakeVendor(t)
	f.respond("deviceBaseList", `{"count":1,"deviceList":[{"deviceId":"8L0DF93PAZ55F2A","channelList":[{"channelId":"0","channelName":"My Camera"}]}]}`)
	respondDetail(f)
	c := f.client()
	defer c.Close()

	devices, err := Discover(context.Background(), c)
	require.NoError(t, err)

	require.Len(t, devices, 1)
	device, ok := devices["My Camera"]
	require.True(t, ok, "devices are keyed by name: %v", devices)
	assert.True(t, device.Initialized())
	assert.Equal(t, 1, f.loginCount(), "discovery shares the client session")
}

func TestDiscover_InitializeFailure(t *testing.T) {
	f := newFakeVendor(t)
	f.respond("deviceBaseList", `{"count":1,"deviceList":[{"deviceId":"8L0DF93PAZ55F2A"}]}`)
	f.fail("deviceBaseDetailList", "DV1001")
	c := f.client()
	defer c.Close()

	_, err := Discover(context.Background(), c)
	require.Error(t, err)

	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr), "want APIError, got %T: %v", err, err)
}
