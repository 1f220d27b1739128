package imou

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

/*
 *   Entities belonging to a device: switches, sensors, binary sensors,
 *   selects and buttons. Instances are created by Device.Initialize
 *   from the abilities the device reports.
 */

// Entity is a controllable or observable feature of a device.
type Entity interface {
	DeviceID() string
	Name() string
	Description() string
	Enabled() bool
	SetEnabled(bool)
	Updated() bool
	Update(ctx context.Context) error
}

type entityBase struct {
	api         API
	deviceID    string
	deviceName  string
	name        string
	description string
	enabled     bool
	updated     bool
	device      *Device
}

func newEntityBase(api API, deviceID, deviceName, name, description string) entityBase {
	return entityBase{
		api:         api,
		deviceID:    deviceID,
		deviceName:  deviceName,
		name:        name,
		description: description,
		enabled:     true,
	}
}

func (e *entityBase) DeviceID() string    { return e.deviceID }
func (e *entityBase) Name() string        { return e.name }
func (e *entityBase) Description() string { return e.description }
func (e *entityBase) Enabled() bool       { return e.enabled }
func (e *entityBase) SetEnabled(v bool)   { e.enabled = v }
func (e *entityBase) Updated() bool       { return e.updated }

// setDevice attaches the owning device; needed by buttons that act on
// the device as a whole.
func (e *entityBase) setDevice(d *Device) { e.device = d }

func (e *entityBase) log() *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"device": e.deviceName,
		"entity": e.name,
	})
}

// Sensor exposes a read-only string state, such as the time of the last
// alarm or the SD card usage.
type Sensor struct {
	entityBase
	state string
}

// NewSensor creates a sensor of one of the types listed in Sensors.
func NewSensor(api API, deviceID, deviceName, sensorType string) *Sensor {
	return &Sensor{
		entityBase: newEntityBase(api, deviceID, deviceName, sensorType, Sensors[sensorType]),
	}
}

// State returns the last value read by Update, or "" before the first
// update.
func (s *Sensor) State() string { return s.state }

func (s *Sensor) Update(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	switch s.name {
	case "lastAlarm":
		data, err := s.api.AlarmMessages(ctx, s.deviceID, 10)
		if err != nil {
			return errors.Wrap(err, "fetching alarm messages")
		}
		if len(data.Alarms) > 0 {
			s.state = Timestamp(data.Alarms[0].Time).Format(time.RFC3339)
		}

	case "storageUsed":
		sd, err := s.api.SDCardStatus(ctx, s.deviceID)
		if err != nil {
			return errors.Wrap(err, "fetching sdcard status")
		}
		if sd.Status == "normal" {
			storage, err := s.api.Storage(ctx, s.deviceID)
			if err != nil {
				return errors.Wrap(err, "fetching storage usage")
			}
			s.state = strconv.Itoa(storage.UsedPercent())
		}

	case "callbackUrl":
		cb, err := s.api.MessageCallback(ctx)
		if err != nil {
			return errors.Wrap(err, "fetching message callback")
		}
		s.state = cb.CallbackURL
	}

	s.log().Debugf("updated %s, value is %s", s.description, s.state)
	s.updated = true
	return nil
}

// BinarySensor exposes a read-only on/off state.
type BinarySensor struct {
	entityBase
	state bool
}

// NewBinarySensor creates a binary sensor of one of the types listed in
// BinarySensors.
func NewBinarySensor(api API, deviceID, deviceName, sensorType string) *BinarySensor {
	return &BinarySensor{
		entityBase: newEntityBase(api, deviceID, deviceName, sensorType, BinarySensors[sensorType]),
	}
}

// On returns the last state read by Update.
func (s *BinarySensor) On() bool { return s.state }

func (s *BinarySensor) Update(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	if s.name == "online" {
		data, err := s.api.DeviceOnline(ctx, s.deviceID)
		if err != nil {
			return errors.Wrap(err, "fetching online status")
		}
		s.state = data.Online()
		s.log().Debugf("updated %s, value is %t", s.description, s.state)
		s.updated = true
	}
	return nil
}

// Switch is a feature that can be turned on and off, for example motion
// detection or the privacy mode.
type Switch struct {
	entityBase
	state       bool
	callbackURL string
}

// NewSwitch creates a switch of one of the types listed in Switches.
func NewSwitch(api API, deviceID, deviceName, switchType string) *Switch {
	return &Switch{
		entityBase: newEntityBase(api, deviceID, deviceName, switchType, Switches[switchType]),
	}
}

// On returns the last state read by Update or set by TurnOn/TurnOff.
func (s *Switch) On() bool { return s.state }

// SetCallbackURL supplies the URL registered when the pushNotifications
// switch is turned on. Other switches ignore it.
func (s *Switch) SetCallbackURL(url string) { s.callbackURL = url }

func (s *Switch) Update(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	if s.name == "pushNotifications" {
		data, err := s.api.MessageCallback(ctx)
		if err != nil {
			return errors.Wrap(err, "fetching message callback")
		}
		s.state = data.Status == "on"
	} else {
		data, err := s.api.CameraStatus(ctx, s.deviceID, s.name)
		if err != nil {
			return errors.Wrap(err, "fetching switch status")
		}
		s.state = data.On()
	}

	s.log().Debugf("updated %s, value is %t", s.description, s.state)
	s.updated = true
	return nil
}

// TurnOn enables the feature.
func (s *Switch) TurnOn(ctx context.Context) error {
	if !s.enabled {
		return nil
	}
	s.log().Debugf("%s requested to turn on", s.description)

	if s.name == "pushNotifications" {
		if s.callbackURL == "" {
			return errors.New("callback url not set, call SetCallbackURL first")
		}
		if err := s.api.SetMessageCallbackOn(ctx, s.callbackURL); err != nil {
			return err
		}
	} else {
		if err := s.api.SetCameraStatus(ctx, s.deviceID, s.name, true); err != nil {
			return err
		}
	}

	s.state = true
	return nil
}

// TurnOff disables the feature.
func (s *Switch) TurnOff(ctx context.Context) error {
	if !s.enabled {
		return nil
	}
	s.log().Debugf("%s requested to turn off", s.description)

	if s.name == "pushNotifications" {
		if err := s.api.SetMessageCallbackOff(ctx); err != nil {
			return err
		}
	} else {
		if err := s.api.SetCameraStatus(ctx, s.deviceID, s.name, false); err != nil {
			return err
		}
	}

	s.state = false
	return nil
}

// Toggle flips the switch. It requires a previous Update so the current
// state is known.
func (s *Switch) Toggle(ctx context.Context) error {
	if !s.enabled || !s.updated {
		return nil
	}
	if s.state {
		return s.TurnOff(ctx)
	}
	return s.TurnOn(ctx)
}

// Select is a feature picking one option from a device-provided list,
// such as the night vision mode.
type Select struct {
	entityBase
	current string
	options []string
}

// NewSelect creates a select of one of the types listed in Selects.
func NewSelect(api API, deviceID, deviceName, selectType string) *Select {
	return &Select{
		entityBase: newEntityBase(api, deviceID, deviceName, selectType, Selects[selectType]),
	}
}

// Current returns the selected option as of the last Update.
func (s *Select) Current() string { return s.current }

// Options returns the options the device supports as of the last Update.
func (s *Select) Options() []string { return s.options }

func (s *Select) Update(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	if s.name == "nightVisionMode" {
		data, err := s.api.NightVisionMode(ctx, s.deviceID)
		if err != nil {
			return errors.Wrap(err, "fetching night vision mode")
		}
		if data.Mode == "" || len(data.Modes) == 0 {
			return &InvalidResponseError{Reason: "mode or modes missing"}
		}
		s.current = data.Mode
		s.options = data.Modes
	}

	s.log().Debugf("updated %s, value is %s", s.description, s.current)
	s.updated = true
	return nil
}

// SelectOption changes the selected option.
func (s *Select) SelectOption(ctx context.Context, option string) error {
	if !s.enabled {
		return nil
	}
	s.log().Debugf("%s set to %s", s.description, option)

	if s.name == "nightVisionMode" {
		if err := s.api.SetNightVisionMode(ctx, s.deviceID, option); err != nil {
			return err
		}
		s.current = option
	}
	return nil
}

// Button triggers a one-shot action on the device.
type Button struct {
	entityBase
}

// NewButton creates a button of one of the types listed in Buttons.
func NewButton(api API, deviceID, deviceName, buttonType string) *Button {
	return &Button{
		entityBase: newEntityBase(api, deviceID, deviceName, buttonType, Buttons[buttonType]),
	}
}

// Press triggers the action.
func (b *Button) Press(ctx context.Context) error {
	if !b.enabled {
		return nil
	}

	switch b.name {
	case "restartDevice":
		if err := b.api.RestartDevice(ctx, b.deviceID); err != nil {
			return err
		}
	case "refreshData":
		if b.device == nil {
			b.log().Warn("no device attached, nothing to refresh")
			break
		}
		if err := b.device.Refresh(ctx); err != nil {
			return err
		}
	}

	b.log().Debugf("pressed %s", b.description)
	b.updated = true
	return nil
}

// Update is a no-op; buttons have no state.
func (b *Button) Update(ctx context.Context) error {
	return nil
}
