package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bonepwm/internal/pwm"
)

type Config struct {
	Sysfs SysfsConfig `yaml:"sysfs"`
	Pins  []PinConfig `yaml:"pins"`
}

// SysfsConfig describes where the cape manager and pwm_test directories live.
// Defaults match a BeagleBone running a 3.8 capemgr kernel.
type SysfsConfig struct {
	Root          string `yaml:"root"`
	CapemgrMatch  string `yaml:"capemgr_match"`
	OCPMatch      string `yaml:"ocp_match"`
	BaseOverlay   string `yaml:"base_overlay"`
	OverlayPrefix string `yaml:"overlay_prefix"`
	DevicePrefix  string `yaml:"device_prefix"`
}

type PinConfig struct {
	Key         string  `yaml:"key"`
	FrequencyHz float64 `yaml:"frequency_hz"`
	DutyPercent float64 `yaml:"duty_percent"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Sysfs.Root == "" {
		cfg.Sysfs.Root = pwm.DefaultRoot
	}
	if cfg.Sysfs.CapemgrMatch == "" {
		cfg.Sysfs.CapemgrMatch = pwm.DefaultCapemgrMatch
	}
	if cfg.Sysfs.OCPMatch == "" {
		cfg.Sysfs.OCPMatch = pwm.DefaultOCPMatch
	}
	if cfg.Sysfs.BaseOverlay == "" {
		cfg.Sysfs.BaseOverlay = pwm.DefaultBaseOverlay
	}
	if cfg.Sysfs.OverlayPrefix == "" {
		cfg.Sysfs.OverlayPrefix = pwm.DefaultOverlayPrefix
	}
	if cfg.Sysfs.DevicePrefix == "" {
		cfg.Sysfs.DevicePrefix = pwm.DefaultDevicePrefix
	}

	seen := make(map[string]bool, len(cfg.Pins))
	for i, p := range cfg.Pins {
		if p.Key == "" {
			return Config{}, fmt.Errorf("pins[%d].key is required", i)
		}
		if seen[p.Key] {
			return Config{}, fmt.Errorf("pins[%d].key %q is duplicated", i, p.Key)
		}
		seen[p.Key] = true
		if !(p.FrequencyHz > 0) {
			return Config{}, fmt.Errorf("pins[%d].frequency_hz must be > 0", i)
		}
		if !(p.DutyPercent >= 0 && p.DutyPercent <= 100) {
			return Config{}, fmt.Errorf("pins[%d].duty_percent must be between 0 and 100", i)
		}
	}

	return cfg, nil
}

// PWM converts the sysfs section into the manager configuration.
func (c SysfsConfig) PWM() pwm.Config {
	return pwm.Config{
		Root:          c.Root,
		CapemgrMatch:  c.CapemgrMatch,
		OCPMatch:      c.OCPMatch,
		BaseOverlay:   c.BaseOverlay,
		OverlayPrefix: c.OverlayPrefix,
		DevicePrefix:  c.DevicePrefix,
	}
}
