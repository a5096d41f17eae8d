// Package schedule holds the per-doctor scheduling state: the bounded
// slot pools, the appointment ledger, and the emergency triage queue.
// None of it is safe for concurrent use on its own; the owning doctor
// aggregate serializes access.
package schedule

import (
	"regexp"

	"github.com/google/uuid"
)

var (
	timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)
	datePattern = regexp.MustCompile(`^(0[1-9]|[12][0-9]|3[01])-(0[1-9]|1[0-2])-([0-9]{4})$`)
)

// IsValidTime reports whether t is a 24-hour HH:MM label.
func IsValidTime(t string) bool { return timePattern.MatchString(t) }

// IsValidDate reports whether d is a DD-MM-YYYY label.
func IsValidDate(d string) bool { return datePattern.MatchString(d) }

// IsValidUrgency reports whether level is in the triage range, where 1 is
// the most critical and 4 the least.
func IsValidUrgency(level int) bool { return level >= 1 && level <= 4 }

// Pool names one of a doctor's two slot pools.
type Pool string

const (
	PoolRegular   Pool = "regular"
	PoolEmergency Pool = "emergency"
)

// Slot is a bookable time within one pool of one doctor. A slot is created
// once and never deleted; only its booked state changes. AppointmentID is
// set exactly when Booked is true.
type Slot struct {
	Time          string
	Booked        bool
	AppointmentID *uuid.UUID
}

// Registry owns a doctor's two slot pools. Pool capacities are fixed at
// construction. Slot times are unique across both pools.
type Registry struct {
	maxRegular   int
	maxEmergency int
	regular      []*Slot
	emergency    []*Slot
}

func NewRegistry(maxRegular, maxEmergency int) *Registry {
	return &Registry{maxRegular: maxRegular, maxEmergency: maxEmergency}
}

func (r *Registry) pool(p Pool) []*Slot {
	if p == PoolEmergency {
		return r.emergency
	}
	return r.regular
}

// AddSlot appends a new unbooked slot to the given pool. The time must be
// a valid HH:MM label, must not collide with any slot in either pool, and
// the pool must have spare capacity. Nothing is mutated on failure.
func (r *Registry) AddSlot(t string, p Pool) error {
	if !IsValidTime(t) {
		return ErrInvalidTime
	}
	if r.HasOverlap(t) {
		return ErrSlotOverlap
	}
	if p == PoolEmergency {
		if len(r.emergency) >= r.maxEmergency {
			return ErrPoolFull
		}
		r.emergency = append(r.emergency, &Slot{Time: t})
		return nil
	}
	if len(r.regular) >= r.maxRegular {
		return ErrPoolFull
	}
	r.regular = append(r.regular, &Slot{Time: t})
	return nil
}

// HasOverlap reports whether any slot in either pool carries this time.
func (r *Registry) HasOverlap(t string) bool {
	for _, s := range r.regular {
		if s.Time == t {
			return true
		}
	}
	for _, s := range r.emergency {
		if s.Time == t {
			return true
		}
	}
	return false
}

// IsTimeFree reports whether a regular slot with this time exists and is
// unbooked.
func (r *Registry) IsTimeFree(t string) bool {
	for _, s := range r.regular {
		if s.Time == t {
			return !s.Booked
		}
	}
	return false
}

// HasFree reports whether the pool has at least one unbooked slot.
func (r *Registry) HasFree(p Pool) bool {
	for _, s := range r.pool(p) {
		if !s.Booked {
			return true
		}
	}
	return false
}

// FreeSlots returns the unbooked slots of a pool in insertion order.
func (r *Registry) FreeSlots(p Pool) []*Slot {
	var free []*Slot
	for _, s := range r.pool(p) {
		if !s.Booked {
			free = append(free, s)
		}
	}
	return free
}

// Slots returns every slot of a pool in insertion order.
func (r *Registry) Slots(p Pool) []*Slot {
	return r.pool(p)
}

// Count returns the number of slots configured in a pool.
func (r *Registry) Count(p Pool) int {
	return len(r.pool(p))
}

// Capacity returns the configured maximum for a pool.
func (r *Registry) Capacity(p Pool) int {
	if p == PoolEmergency {
		return r.maxEmergency
	}
	return r.maxRegular
}

// Book marks the unbooked slot with the given time as booked and attaches
// the appointment ID. It reports false when no matching unbooked slot
// exists; callers are expected to verify availability first.
func (r *Registry) Book(p Pool, t string, appointmentID uuid.UUID) bool {
	for _, s := range r.pool(p) {
		if s.Time == t && !s.Booked {
			s.Booked = true
			id := appointmentID
			s.AppointmentID = &id
			return true
		}
	}
	return false
}

// Release frees the slot with the given time, clearing its appointment
// reference. Releasing an unbooked or unknown time is a no-op.
func (r *Registry) Release(p Pool, t string) {
	for _, s := range r.pool(p) {
		if s.Time == t {
			s.Booked = false
			s.AppointmentID = nil
			return
		}
	}
}
