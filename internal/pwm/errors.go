package pwm

import (
	"errors"
	"fmt"
)

// Failure classes reported by Manager. Returned errors wrap one of these and,
// where there is one, the underlying I/O error; test with errors.Is.
var (
	// ErrDiscovery means the capemgr or ocp directory could not be found.
	ErrDiscovery = errors.New("pwm: discovery failed")
	// ErrNotInitialized is returned by operations run before a successful
	// Initialize. It wraps ErrDiscovery.
	ErrNotInitialized = fmt.Errorf("%w: manager not initialized", ErrDiscovery)

	ErrOverlayIO       = errors.New("pwm: overlay slots i/o failed")
	ErrPathResolution  = errors.New("pwm: pin directory not found")
	ErrHandleOpen      = errors.New("pwm: open attribute failed")
	ErrInvalidArgument = errors.New("pwm: invalid argument")
	ErrUnknownPin      = errors.New("pwm: pin not exported")
	ErrAlreadyExported = errors.New("pwm: pin already exported")
)
