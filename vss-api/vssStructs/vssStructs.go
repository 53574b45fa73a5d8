package vssStructs

import "strings"

// Device rotation values. Joan 6 panels mount upside down in the stock
// frame, so corrected landscape is 2, not 0.
const (
	RotationPortrait      = 0
	RotationPortraitFlip  = 1
	RotationLandscape     = 2
	RotationLandscapeFlip = 3
)

// Backend name for the embedded WebKit renderer. The alternate "Web" backend
// selects the server-side screenshot renderer, which does not poll.
const BackendHTML = "HTML"

// Fields key for the content address. VSS matches this key case-sensitively
// and silently drops anything else ("Url", "URL", ...), so it must be
// exactly this token.
const FieldURL = "url"

// Fields key for the session reload timeout, in seconds as a decimal string.
const FieldReloadTimeout = "ReloadTimeout"

type Device struct {
	Uuid     string         `json:"Uuid"`
	State    string         `json:"State,omitempty"`
	Options  map[string]any `json:"Options,omitempty"`
	Displays []Display      `json:"Displays,omitempty"`
}

type Display struct {
	Rotation int `json:"Rotation"`
}

type Session struct {
	Uuid    string         `json:"Uuid"`
	Backend Backend        `json:"Backend"`
	Options map[string]any `json:"Options,omitempty"`
}

type Backend struct {
	Name   string            `json:"Name"`
	Fields map[string]string `json:"Fields"`
}

// DeviceObject is the raw wire form of a device. A device PUT replaces the
// whole record, so updates go read-modify-write through this type to keep
// fields the typed structs do not model.
type DeviceObject map[string]any

func (d DeviceObject) Uuid() string {
	s, _ := d["Uuid"].(string)
	return NormalizeUuid(s)
}

func (d DeviceObject) State() string {
	s, _ := d["State"].(string)
	return s
}

func (d DeviceObject) Name() string {
	if opts, ok := d["Options"].(map[string]any); ok {
		if n, ok := opts["Name"].(string); ok {
			return n
		}
	}
	return ""
}

func (d DeviceObject) SetName(name string) {
	d.options()["Name"] = name
}

func (d DeviceObject) SetRotation(rotation int) {
	d.options()["Rotation"] = rotation
}

func (d DeviceObject) options() map[string]any {
	opts, ok := d["Options"].(map[string]any)
	if !ok {
		opts = make(map[string]any)
		d["Options"] = opts
	}
	return opts
}

// NormalizeUuid lowercases a device identifier. VSS stores and returns uuids
// lowercase but the sticker on the device prints them uppercase.
func NormalizeUuid(uuid string) string {
	return strings.ToLower(strings.TrimSpace(uuid))
}
