package sdk

import (
	"github.com/pkg/errors"

	"github.com/itsethra/uesdk/internal/rproc"
)

// StructuralError reports a malformed object graph: a null outer
// where one was required, an unresolvable property-class name, or a
// PropertyKind that recursed into an FQN that never got indexed
// (spec.md §7 "Structural errors"). Always fatal to the pass.
type StructuralError struct {
	Addr rproc.Address
	FQN  FQN
	msg  string
}

func (e *StructuralError) Error() string {
	return errors.Errorf("structural error at %s (%s): %s", e.Addr, e.FQN, e.msg).Error()
}

func newStructuralError(addr rproc.Address, fqn FQN, format string, args ...any) error {
	return &StructuralError{Addr: addr, FQN: fqn, msg: errors.Errorf(format, args...).Error()}
}

// AssertionError reports a violated invariant of the bitfield/layout
// machinery - a sign that the target runtime's reflection layout has
// drifted from what OffsetConfig describes (spec.md §7 "Assertion
// violations").
type AssertionError struct {
	Addr rproc.Address
	msg  string
}

func (e *AssertionError) Error() string {
	return errors.Errorf("assertion violated at %s: %s", e.Addr, e.msg).Error()
}

func newAssertionError(addr rproc.Address, format string, args ...any) error {
	return &AssertionError{Addr: addr, msg: errors.Errorf(format, args...).Error()}
}

// ConfigError reports a missing or contradictory OffsetConfig/Options
// value, detected before the pass starts (spec.md §7 "Configuration
// errors").
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return errors.Errorf("configuration error: %s", e.msg).Error()
}

func newConfigError(format string, args ...any) error {
	return &ConfigError{msg: errors.Errorf(format, args...).Error()}
}
