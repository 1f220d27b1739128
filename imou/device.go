package imou

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Device is a representation of one Imou device and the entities derived
// from its abilities. Create it with NewDevice and populate it with
// Initialize before use.
type Device struct {
	api      API
	deviceID string

	name         string
	givenName    string
	catalog      string
	model        string
	firmware     string
	manufacturer string
	online       bool
	capabilities []string

	switches      []*Switch
	sensors       []*Sensor
	binarySensors []*BinarySensor
	selects       []*Select
	buttons       []*Button

	initialized bool
	enabled     bool
}

// NewDevice returns an uninitialized device handle.
func NewDevice(api API, deviceID string) *Device {
	return &Device{
		api:          api,
		deviceID:     deviceID,
		manufacturer: "Imou",
		enabled:      true,
	}
}

func (d *Device) DeviceID() string { return d.deviceID }

// Name returns the caller-assigned name if one was set, else the name
// registered with the vendor.
func (d *Device) Name() string {
	if d.givenName != "" {
		return d.givenName
	}
	return d.name
}

// SetName overrides the device name locally.
func (d *Device) SetName(name string) { d.givenName = name }

func (d *Device) Model() string          { return d.model }
func (d *Device) Catalog() string        { return d.catalog }
func (d *Device) Firmware() string       { return d.firmware }
func (d *Device) Manufacturer() string   { return d.manufacturer }
func (d *Device) Online() bool           { return d.online }
func (d *Device) Capabilities() []string { return d.capabilities }
func (d *Device) Initialized() bool      { return d.initialized }
func (d *Device) Enabled() bool          { return d.enabled }
func (d *Device) SetEnabled(v bool)      { d.enabled = v }

// Initialize retrieves the device details and builds the entity instances
// matching the abilities the device reports.
func (d *Device) Initialize(ctx context.Context) error {
	details, err := d.api.DeviceDetails(ctx, d.deviceID)
	if err != nil {
		return errors.Wrap(err, "fetching device details")
	}
	if len(details.DeviceList) != 1 {
		return &InvalidResponseError{
			Reason: fmt.Sprintf("expected 1 device in deviceList, got %d", len(details.DeviceList)),
		}
	}

	data := details.DeviceList[0]
	d.catalog = data.Catalog
	d.firmware = data.Version
	d.name = data.Name
	d.model = data.DeviceModel
	d.online = data.Status == "online"

	d.capabilities = splitAbility(data.Ability)
	// motionDetect is switchable on every camera but is not always
	// reported in the ability string
	if !containsFold(d.capabilities, "motionDetect") {
		d.capabilities = append(d.capabilities, "motionDetect")
	}

	d.buildEntities()

	logrus.WithField("device", d.String()).Debug("initialized device")
	d.initialized = true
	return nil
}

// buildEntities creates one entity instance per supported feature.
func (d *Device) buildEntities() {
	d.switches = nil
	d.sensors = nil
	d.binarySensors = nil
	d.selects = nil
	d.buttons = nil

	// a switch for each ability with a matching name, in a stable order
	switchTypes := make([]string, 0, len(Switches))
	for switchType := range Switches {
		switchTypes = append(switchTypes, switchType)
	}
	sort.Strings(switchTypes)

	for _, switchType := range switchTypes {
		if containsFold(d.capabilities, switchType) {
			d.switches = append(d.switches, NewSwitch(d.api, d.deviceID, d.Name(), switchType))
		}
	}

	d.sensors = append(d.sensors, NewSensor(d.api, d.deviceID, d.Name(), "lastAlarm"))
	if containsFold(d.capabilities, "LocalStorage") {
		d.sensors = append(d.sensors, NewSensor(d.api, d.deviceID, d.Name(), "storageUsed"))
	}

	d.binarySensors = append(d.binarySensors, NewBinarySensor(d.api, d.deviceID, d.Name(), "online"))

	if containsFold(d.capabilities, "NVM") {
		d.selects = append(d.selects, NewSelect(d.api, d.deviceID, d.Name(), "nightVisionMode"))
	}

	for _, buttonType := range []string{"restartDevice", "refreshData"} {
		button := NewButton(d.api, d.deviceID, d.Name(), buttonType)
		button.setDevice(d)
		d.buttons = append(d.buttons, button)
	}
}

// Refresh re-checks the online state and updates every enabled entity.
// Entities are skipped while the device is offline.
func (d *Device) Refresh(ctx context.Context) error {
	if !d.enabled {
		return nil
	}
	if !d.initialized {
		if err := d.Initialize(ctx); err != nil {
			return err
		}
	}

	logrus.WithField("device", d.Name()).Debug("refresh requested")

	online, err := d.api.DeviceOnline(ctx, d.deviceID)
	if err != nil {
		return errors.Wrap(err, "fetching online status")
	}
	d.online = online.Online()

	// the online sensor takes the state just fetched; querying again
	// through its Update would be a second identical call
	for _, s := range d.binarySensors {
		if s.name == "online" {
			s.state = d.online
			s.updated = true
		}
	}

	if !d.online {
		return nil
	}

	for _, e := range d.Entities() {
		if s, ok := e.(*BinarySensor); ok && s.name == "online" {
			continue
		}
		if err := e.Update(ctx); err != nil {
			return errors.Wrapf(err, "updating %s", e.Name())
		}
	}
	return nil
}

// Entities returns every entity of the device.
func (d *Device) Entities() []Entity {
	var all []Entity
	for _, e := range d.switches {
		all = append(all, e)
	}
	for _, e := range d.sensors {
		all = append(all, e)
	}
	for _, e := range d.binarySensors {
		all = append(all, e)
	}
	for _, e := range d.selects {
		all = append(all, e)
	}
	for _, e := range d.buttons {
		all = append(all, e)
	}
	return all
}

func (d *Device) Switches() []*Switch            { return d.switches }
func (d *Device) Sensors() []*Sensor             { return d.sensors }
func (d *Device) BinarySensors() []*BinarySensor { return d.binarySensors }
func (d *Device) Selects() []*Select             { return d.selects }
func (d *Device) Buttons() []*Button             { return d.buttons }

// EntityByName returns the entity with the given name, or nil.
func (d *Device) EntityByName(name string) Entity {
	for _, e := range d.Entities() {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

// SwitchByName returns the switch with the given name, or nil.
func (d *Device) SwitchByName(name string) *Switch {
	for _, s := range d.switches {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

func (d *Device) String() string {
	return fmt.Sprintf("%s (%s, serial %s)", d.name, d.model, d.deviceID)
}

// Diagnostics is a snapshot of the device and its entities, suitable for
// support dumps.
type Diagnostics struct {
	DeviceID     string                 `json:"deviceId"`
	Name         string                 `json:"name"`
	GivenName    string                 `json:"givenName,omitempty"`
	Catalog      string                 `json:"catalog"`
	Model        string                 `json:"model"`
	Firmware     string                 `json:"firmware"`
	Manufacturer string                 `json:"manufacturer"`
	Online       bool                   `json:"online"`
	Capabilities []CapabilityDiagnostic `json:"capabilities"`
	Entities     []EntityDiagnostic     `json:"entities"`
}

// CapabilityDiagnostic describes one ability code.
type CapabilityDiagnostic struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EntityDiagnostic describes one entity and its last known state.
type EntityDiagnostic struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description"`
	State       string `json:"state,omitempty"`
	Enabled     bool   `json:"enabled"`
	Updated     bool   `json:"updated"`
}

// Diagnostics returns the current snapshot.
func (d *Device) Diagnostics() Diagnostics {
	diag := Diagnostics{
		DeviceID:     d.deviceID,
		Name:         d.name,
		GivenName:    d.givenName,
		Catalog:      d.catalog,
		Model:        d.model,
		Firmware:     d.firmware,
		Manufacturer: d.manufacturer,
		Online:       d.online,
	}

	for _, name := range d.capabilities {
		description := name
		if known, ok := Capabilities[name]; ok {
			description = fmt.Sprintf("%s (%s)", known, name)
		}
		diag.Capabilities = append(diag.Capabilities, CapabilityDiagnostic{
			Name:        name,
			Description: description,
		})
	}

	for _, s := range d.switches {
		diag.Entities = append(diag.Entities, entityDiag("switch", s, fmt.Sprintf("%t", s.On())))
	}
	for _, s := range d.sensors {
		diag.Entities = append(diag.Entities, entityDiag("sensor", s, s.State()))
	}
	for _, s := range d.binarySensors {
		diag.Entities = append(diag.Entities, entityDiag("binary_sensor", s, fmt.Sprintf("%t", s.On())))
	}
	for _, s := range d.selects {
		diag.Entities = append(diag.Entities, entityDiag("select", s, s.Current()))
	}
	for _, b := range d.buttons {
		diag.Entities = append(diag.Entities, entityDiag("button", b, ""))
	}

	return diag
}

func entityDiag(kind string, e Entity, state string) EntityDiagnostic {
	return EntityDiagnostic{
		Kind:        kind,
		Name:        e.Name(),
		Description: e.Description(),
		State:       state,
		Enabled:     e.Enabled(),
		Updated:     e.Updated(),
	}
}

// Dump renders a human readable description of the device.
func (d *Device) Dump() string {
	diag := d.Diagnostics()

	var b strings.Builder
	fmt.Fprintf(&b, "- Device ID: %s\n", diag.DeviceID)
	fmt.Fprintf(&b, "    Name: %s\n", diag.Name)
	fmt.Fprintf(&b, "    Catalog: %s\n", diag.Catalog)
	fmt.Fprintf(&b, "    Model: %s\n", diag.Model)
	fmt.Fprintf(&b, "    Firmware: %s\n", diag.Firmware)
	fmt.Fprintf(&b, "    Online: %t\n", diag.Online)

	b.WriteString("    Capabilities:\n")
	for _, c := range diag.Capabilities {
		fmt.Fprintf(&b, "        - %s\n", c.Description)
	}

	b.WriteString("    Entities:\n")
	for _, e := range diag.Entities {
		if e.State != "" {
			fmt.Fprintf(&b, "        - [%s] %s (%s): %s\n", e.Kind, e.Description, e.Name, e.State)
		} else {
			fmt.Fprintf(&b, "        - [%s] %s (%s)\n", e.Kind, e.Description, e.Name)
		}
	}

	return b.String()
}

func splitAbility(ability string) []string {
	if ability == "" {
		return nil
	}
	return strings.Split(ability, ",")
}

func containsFold(list []string, want string) bool {
	for _, s := range list {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}
