// Package pwm exports BeagleBone PWM pins through capemgr overlays and the
// pwm_test sysfs driver.
//
// A pin goes through Unexported -> overlay loaded -> directory resolved ->
// handles open (exported) and back. Manager holds the discovered paths and
// the registry of exported pins; it is not safe for concurrent use and
// callers must serialize access.
package pwm

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"bonepwm/internal/capemgr"
	"bonepwm/internal/sysfs"
)

const (
	DefaultRoot          = "/sys/devices"
	DefaultCapemgrMatch  = "bone_capemgr"
	DefaultOCPMatch      = "ocp"
	DefaultBaseOverlay   = "am33xx_pwm"
	DefaultOverlayPrefix = "bone_pwm_"
	DefaultDevicePrefix  = "pwm_test_"
)

var openAttrFn = sysfs.OpenAttr

type Config struct {
	// Root is scanned for the capemgr and ocp directories.
	Root string
	// CapemgrMatch and OCPMatch are substrings of the directory names; the
	// kernel appends an instance id (bone_capemgr.9, ocp.3).
	CapemgrMatch string
	OCPMatch     string
	// BaseOverlay is loaded once by Initialize so the ocp children appear.
	BaseOverlay string
	// OverlayPrefix + key names the per-pin overlay fragment.
	OverlayPrefix string
	// DevicePrefix + key is a substring of the per-pin directory under ocp.
	DevicePrefix string
}

type Manager struct {
	cfg Config

	capemgrDir  string
	ocpDir      string
	slots       *capemgr.Slots
	initialized bool

	pins *registry
}

func New(cfg Config) *Manager {
	if cfg.Root == "" {
		cfg.Root = DefaultRoot
	}
	if cfg.CapemgrMatch == "" {
		cfg.CapemgrMatch = DefaultCapemgrMatch
	}
	if cfg.OCPMatch == "" {
		cfg.OCPMatch = DefaultOCPMatch
	}
	if cfg.BaseOverlay == "" {
		cfg.BaseOverlay = DefaultBaseOverlay
	}
	if cfg.OverlayPrefix == "" {
		cfg.OverlayPrefix = DefaultOverlayPrefix
	}
	if cfg.DevicePrefix == "" {
		cfg.DevicePrefix = DefaultDevicePrefix
	}
	return &Manager{cfg: cfg, pins: newRegistry()}
}

// Initialize discovers the capemgr and ocp directories and loads the base
// PWM overlay. It is a no-op once it has succeeded; after a failure the
// manager stays uninitialized and Initialize may be called again.
func (m *Manager) Initialize() error {
	if m.initialized {
		return nil
	}
	capemgrDir, err := sysfs.FindEntry(m.cfg.Root, m.cfg.CapemgrMatch)
	if err != nil {
		return fmt.Errorf("%w: capemgr: %w", ErrDiscovery, err)
	}
	ocpDir, err := sysfs.FindEntry(m.cfg.Root, m.cfg.OCPMatch)
	if err != nil {
		return fmt.Errorf("%w: ocp: %w", ErrDiscovery, err)
	}

	slots := capemgr.New(filepath.Join(capemgrDir, "slots"))
	if err := slots.Load(m.cfg.BaseOverlay); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOverlayIO, m.cfg.BaseOverlay, err)
	}

	m.capemgrDir = capemgrDir
	m.ocpDir = ocpDir
	m.slots = slots
	m.initialized = true
	return nil
}

func (m *Manager) Initialized() bool {
	return m.initialized
}

// Paths returns the discovered capemgr and ocp directories (empty before
// Initialize).
func (m *Manager) Paths() (capemgrDir, ocpDir string) {
	return m.capemgrDir, m.ocpDir
}

// Overlays returns the current capemgr slot table.
func (m *Manager) Overlays() ([]capemgr.Slot, error) {
	if !m.initialized {
		return nil, ErrNotInitialized
	}
	slots, err := m.slots.List()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOverlayIO, err)
	}
	return slots, nil
}

func (m *Manager) overlayName(key string) string {
	return m.cfg.OverlayPrefix + key
}

// Enable loads the pin's overlay, resolves its pwm_test directory and opens
// its period and duty attributes. On failure no registry entry is created and
// no handle is left open; the overlay, once loaded, stays loaded.
//
// Enabling a pin that is already exported fails with ErrAlreadyExported and
// leaves the existing entry untouched.
func (m *Manager) Enable(key string) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	if key == "" {
		return fmt.Errorf("%w: empty pin key", ErrInvalidArgument)
	}
	if _, ok := m.pins.find(key); ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExported, key)
	}

	overlay := m.overlayName(key)
	if err := m.slots.Load(overlay); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOverlayIO, overlay, err)
	}

	dir, err := sysfs.FindEntry(m.ocpDir, m.cfg.DevicePrefix+key)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPathResolution, key, err)
	}

	period, err := openAttrFn(filepath.Join(dir, "period"))
	if err != nil {
		return fmt.Errorf("%w: %s period: %w", ErrHandleOpen, key, err)
	}
	duty, err := openAttrFn(filepath.Join(dir, "duty"))
	if err != nil {
		_ = period.Close()
		return fmt.Errorf("%w: %s duty: %w", ErrHandleOpen, key, err)
	}

	p := &exportedPin{key: key, period: period, duty: duty}
	if err := m.pins.insert(p); err != nil {
		_ = p.close()
		return err
	}
	return nil
}

// Disable unloads the pin's overlay and releases its handles. Unload failures
// are ignored; only handle close errors are returned. Disabling a pin that is
// not exported succeeds.
func (m *Manager) Disable(key string) error {
	if m.slots != nil {
		_ = m.slots.Unload(m.overlayName(key))
	}
	return m.pins.remove(key)
}

// SetFrequency writes the period for hz, rounded to the nearest nanosecond.
// Duty is not rewritten; call SetDutyCycle again to keep the same ratio.
func (m *Manager) SetFrequency(key string, hz float64) error {
	if !(hz > 0) || math.IsInf(hz, 1) {
		return fmt.Errorf("%w: frequency %v", ErrInvalidArgument, hz)
	}
	p, ok := m.pins.find(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPin, key)
	}

	ns := math.Round(1e9 / hz)
	if ns < 1 || ns >= math.MaxUint64 {
		return fmt.Errorf("%w: frequency %v out of range", ErrInvalidArgument, hz)
	}
	periodNS := uint64(ns)
	if err := p.period.WriteUint(periodNS); err != nil {
		return fmt.Errorf("pwm: set frequency %s: %w", key, err)
	}
	p.periodNS = periodNS
	return nil
}

// SetDutyCycle writes duty as percent (0..100) of the last period written.
// Before any SetFrequency the period is 0, so the duty written is 0.
func (m *Manager) SetDutyCycle(key string, percent float64) error {
	if !(percent >= 0 && percent <= 100) {
		return fmt.Errorf("%w: duty %v", ErrInvalidArgument, percent)
	}
	p, ok := m.pins.find(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPin, key)
	}

	dutyNS := uint64(math.Floor(float64(p.periodNS) * percent / 100))
	if err := p.duty.WriteUint(dutyNS); err != nil {
		return fmt.Errorf("pwm: set duty %s: %w", key, err)
	}
	p.dutyNS = dutyNS
	return nil
}

// CleanupAll disables every exported pin. The registry is always empty
// afterwards; close errors are joined and returned.
func (m *Manager) CleanupAll() error {
	var errs []error
	for m.pins.len() > 0 {
		key := m.pins.keys()[0]
		if err := m.Disable(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Exported reports whether key is currently in the registry.
func (m *Manager) Exported(key string) bool {
	_, ok := m.pins.find(key)
	return ok
}

// Pins returns the exported pins sorted by key.
func (m *Manager) Pins() []PinState {
	keys := m.pins.keys()
	out := make([]PinState, 0, len(keys))
	for _, k := range keys {
		p, _ := m.pins.find(k)
		out = append(out, p.state())
	}
	return out
}
