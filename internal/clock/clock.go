// Package clock abstracts the source of the current time so that the
// reservation service and the reconciliation scheduler can be driven
// deterministically in tests.  Every operation samples Now() exactly
// once and reasons about that single instant.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock in UTC.  All timestamps in the store are
// UTC, so comparisons stay consistent.
type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

// Frozen is a manually advanced clock for tests.
type Frozen struct {
	Current time.Time
}

func (f *Frozen) Now() time.Time { return f.Current }

// Advance moves the frozen clock forward by d.
func (f *Frozen) Advance(d time.Duration) { f.Current = f.Current.Add(d) }
