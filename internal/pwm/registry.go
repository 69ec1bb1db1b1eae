package pwm

import (
	"errors"
	"fmt"
	"sort"

	"bonepwm/internal/sysfs"
)

// exportedPin owns the period and duty handles of one enabled pin.
type exportedPin struct {
	key    string
	period *sysfs.Attr
	duty   *sysfs.Attr

	// periodNS is the last period written; duty is computed against it.
	periodNS uint64
	dutyNS   uint64
}

func (p *exportedPin) close() error {
	return errors.Join(p.period.Close(), p.duty.Close())
}

func (p *exportedPin) state() PinState {
	return PinState{
		Key:        p.key,
		PeriodNS:   p.periodNS,
		DutyNS:     p.dutyNS,
		PeriodPath: p.period.Path(),
		DutyPath:   p.duty.Path(),
	}
}

// PinState is a read-only view of an exported pin.
type PinState struct {
	Key        string `json:"key"`
	PeriodNS   uint64 `json:"period_ns"`
	DutyNS     uint64 `json:"duty_ns"`
	PeriodPath string `json:"period_path"`
	DutyPath   string `json:"duty_path"`
}

// registry holds at most one exportedPin per key.
type registry struct {
	pins map[string]*exportedPin
}

func newRegistry() *registry {
	return &registry{pins: make(map[string]*exportedPin)}
}

func (r *registry) insert(p *exportedPin) error {
	if _, ok := r.pins[p.key]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExported, p.key)
	}
	r.pins[p.key] = p
	return nil
}

func (r *registry) find(key string) (*exportedPin, bool) {
	p, ok := r.pins[key]
	return p, ok
}

// remove drops key from the registry and releases its handles. The entry is
// removed even if closing fails. Removing an absent key is a no-op.
func (r *registry) remove(key string) error {
	p, ok := r.pins[key]
	if !ok {
		return nil
	}
	delete(r.pins, key)
	if err := p.close(); err != nil {
		return fmt.Errorf("pwm: close %s: %w", key, err)
	}
	return nil
}

func (r *registry) keys() []string {
	out := make([]string, 0, len(r.pins))
	for k := range r.pins {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r *registry) len() int {
	return len(r.pins)
}
