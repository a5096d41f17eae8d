// Package doctor defines the doctor aggregate. A doctor exclusively owns
// its slot registry, appointment ledger, and emergency triage queue; a
// single mutex guards all three so that check-then-act sequences (verify
// availability, then book) form one critical section.
package doctor

import (
	"regexp"
	"sync"

	"github.com/google/uuid"

	"github.com/clinicroute/clinicroute/internal/domain/location"
	"github.com/clinicroute/clinicroute/internal/domain/schedule"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

type Doctor struct {
	ID             uuid.UUID
	Name           string
	Specialization string
	Sector         string

	mu     sync.Mutex
	slots  *schedule.Registry
	ledger *schedule.Ledger
	triage *schedule.TriageQueue
}

// New creates a doctor with empty slot pools of the given capacities.
// Specialization and sector are immutable after creation.
func New(name, specialization, sector string, maxRegular, maxEmergency int) (*Doctor, error) {
	if name == "" || len(name) > 30 || !namePattern.MatchString(name) {
		return nil, ErrInvalidName
	}
	if specialization == "" || len(specialization) > 20 || !namePattern.MatchString(specialization) {
		return nil, ErrInvalidSpecialization
	}
	if !location.IsValidSector(sector) {
		return nil, location.ErrInvalidSector
	}
	if maxRegular <= 0 || maxEmergency <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Doctor{
		ID:             uuid.New(),
		Name:           name,
		Specialization: specialization,
		Sector:         sector,
		slots:          schedule.NewRegistry(maxRegular, maxEmergency),
		ledger:         schedule.NewLedger(),
		triage:         schedule.NewTriageQueue(),
	}, nil
}

// Rehydrate rebuilds a doctor aggregate from persisted identity fields.
// Slots and appointments are restored afterwards through AddSlot,
// AddEmergencySlot, and RestoreAppointment so that all load-time
// validation runs again.
func Rehydrate(id uuid.UUID, name, specialization, sector string, maxRegular, maxEmergency int) (*Doctor, error) {
	d, err := New(name, specialization, sector, maxRegular, maxEmergency)
	if err != nil {
		return nil, err
	}
	d.ID = id
	return d, nil
}

// AddSlot appends a regular slot at the given time.
func (d *Doctor) AddSlot(t string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slots.AddSlot(t, schedule.PoolRegular)
}

// AddEmergencySlot appends an emergency slot at the given time.
func (d *Doctor) AddEmergencySlot(t string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slots.AddSlot(t, schedule.PoolEmergency)
}

// IsSlotAvailable reports whether a regular slot with this time exists
// and is unbooked.
func (d *Doctor) IsSlotAvailable(t string) (bool, error) {
	if !schedule.IsValidTime(t) {
		return false, schedule.ErrInvalidTime
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slots.IsTimeFree(t), nil
}

// IsSlotAvailableOn is the stronger availability check: the regular slot
// must exist and be unbooked, and no appointment anywhere in the doctor's
// history may already occupy this exact (date, time) pair.
func (d *Doctor) IsSlotAvailableOn(date, t string) (bool, error) {
	if !schedule.IsValidDate(date) {
		return false, schedule.ErrInvalidDate
	}
	if !schedule.IsValidTime(t) {
		return false, schedule.ErrInvalidTime
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.availableOnLocked(date, t), nil
}

func (d *Doctor) availableOnLocked(date, t string) bool {
	return d.slots.IsTimeFree(t) && !d.ledger.HasAppointmentAt(date, t)
}

// HasAvailableSlot reports whether any regular slot is free.
func (d *Doctor) HasAvailableSlot() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slots.HasFree(schedule.PoolRegular)
}

// HasEmergencySlot reports whether any emergency slot is free.
func (d *Doctor) HasEmergencySlot() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slots.HasFree(schedule.PoolEmergency)
}

// BookRegular books the regular slot at the given time for the patient.
// The whole check-then-book sequence runs under the doctor's lock, so a
// stale availability answer cannot slip in between. Nothing is mutated
// on failure.
func (d *Doctor) BookRegular(patientID uuid.UUID, date, t string) (*schedule.Appointment, error) {
	if !schedule.IsValidDate(date) {
		return nil, schedule.ErrInvalidDate
	}
	if !schedule.IsValidTime(t) {
		return nil, schedule.ErrInvalidTime
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.availableOnLocked(date, t) {
		return nil, schedule.ErrSlotUnavailable
	}

	app := &schedule.Appointment{
		ID:        uuid.New(),
		DoctorID:  d.ID,
		PatientID: patientID,
		Date:      date,
		Time:      t,
	}
	if !d.slots.Book(schedule.PoolRegular, t, app.ID) {
		return nil, schedule.ErrSlotUnavailable
	}
	d.ledger.RecordRegular(app)
	return app, nil
}

// BookEmergency books the first free emergency slot for the patient on
// the given date, skipping slots whose (date, time) pair would collide
// with an existing appointment in the history.
func (d *Doctor) BookEmergency(patientID uuid.UUID, date string) (*schedule.Appointment, error) {
	if !schedule.IsValidDate(date) {
		return nil, schedule.ErrInvalidDate
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bookEmergencyLocked(patientID, date)
}

func (d *Doctor) bookEmergencyLocked(patientID uuid.UUID, date string) (*schedule.Appointment, error) {
	for _, s := range d.slots.FreeSlots(schedule.PoolEmergency) {
		if d.ledger.HasAppointmentAt(date, s.Time) {
			continue
		}
		app := &schedule.Appointment{
			ID:        uuid.New(),
			DoctorID:  d.ID,
			PatientID: patientID,
			Date:      date,
			Time:      s.Time,
			Emergency: true,
		}
		d.slots.Book(schedule.PoolEmergency, s.Time, app.ID)
		d.ledger.RecordEmergency(app)
		return app, nil
	}
	return nil, schedule.ErrSlotUnavailable
}

// AssignEmergency enqueues the patient at the given urgency, then
// immediately tries to serve the most critical waiter if an emergency
// slot is free. The returned appointment may belong to a different, more
// urgent patient; a nil appointment means the requester is waiting in the
// queue. A waiter whose booking attempt fails is re-enqueued rather than
// dropped.
func (d *Doctor) AssignEmergency(patientID uuid.UUID, urgency int, date string) (*schedule.Appointment, error) {
	if !schedule.IsValidDate(date) {
		return nil, schedule.ErrInvalidDate
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.triage.Push(patientID, urgency); err != nil {
		return nil, err
	}

	if !d.slots.HasFree(schedule.PoolEmergency) {
		return nil, nil
	}

	next, nextUrgency, ok := d.triage.Pop()
	if !ok {
		return nil, nil
	}
	app, err := d.bookEmergencyLocked(next, date)
	if err != nil {
		// Every free slot collided with a historical appointment;
		// put the waiter back instead of dropping them.
		_ = d.triage.Push(next, nextUrgency)
		return nil, nil
	}
	return app, nil
}

// DrainTriage books waiting emergency patients into freed slots, most
// critical first, until slots or waiters run out. Callers invoke it after
// any operation that can free an emergency slot.
func (d *Doctor) DrainTriage(date string) []*schedule.Appointment {
	d.mu.Lock()
	defer d.mu.Unlock()

	var booked []*schedule.Appointment
	for d.slots.HasFree(schedule.PoolEmergency) {
		next, urgency, ok := d.triage.Pop()
		if !ok {
			break
		}
		app, err := d.bookEmergencyLocked(next, date)
		if err != nil {
			_ = d.triage.Push(next, urgency)
			break
		}
		booked = append(booked, app)
	}
	return booked
}

// Cancel removes every appointment held by the patient, frees the slots
// they occupied, and reports whether anything was removed.
func (d *Doctor) Cancel(patientID uuid.UUID) ([]*schedule.Appointment, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := d.ledger.Cancel(patientID)
	for _, a := range removed {
		pool := schedule.PoolRegular
		if a.Emergency {
			pool = schedule.PoolEmergency
		}
		d.slots.Release(pool, a.Time)
	}
	return removed, len(removed) > 0
}

// MarkMissed flags the patient's first active appointment as missed.
func (d *Doctor) MarkMissed(patientID uuid.UUID) (*schedule.Appointment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	app := d.ledger.MarkMissed(patientID)
	if app == nil {
		return nil, schedule.ErrAppointmentNotFound
	}
	return app, nil
}

// Rebook moves the patient's missed appointment to a new date and slot
// and clears the missed flag. A regular appointment needs an unbooked
// regular slot at exactly newTime; an emergency appointment takes any
// free emergency slot and adopts its time. The original appointment is
// left untouched when no qualifying slot exists.
func (d *Doctor) Rebook(patientID uuid.UUID, newDate, newTime string) (*schedule.Appointment, error) {
	if !schedule.IsValidDate(newDate) {
		return nil, schedule.ErrInvalidDate
	}
	if !schedule.IsValidTime(newTime) {
		return nil, schedule.ErrInvalidTime
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	app := d.ledger.FindMissed(patientID)
	if app == nil {
		return nil, schedule.ErrNoMissedAppointment
	}

	if app.Emergency {
		for _, s := range d.slots.FreeSlots(schedule.PoolEmergency) {
			if d.ledger.HasAppointmentAt(newDate, s.Time) {
				continue
			}
			d.slots.Release(schedule.PoolEmergency, app.Time)
			app.Date = newDate
			app.Time = s.Time
			app.Missed = false
			d.slots.Book(schedule.PoolEmergency, s.Time, app.ID)
			return app, nil
		}
		return nil, schedule.ErrSlotUnavailable
	}

	if !d.slots.IsTimeFree(newTime) {
		return nil, schedule.ErrSlotUnavailable
	}
	if d.ledger.HasAppointmentAt(newDate, newTime) {
		return nil, schedule.ErrAppointmentExists
	}
	d.slots.Release(schedule.PoolRegular, app.Time)
	app.Date = newDate
	app.Time = newTime
	app.Missed = false
	d.slots.Book(schedule.PoolRegular, newTime, app.ID)
	return app, nil
}

// RestoreAppointment re-records a persisted appointment during load. It
// runs the same validation as a fresh booking and preserves the missed
// flag, so a corrupted snapshot fails loudly instead of half-loading.
func (d *Doctor) RestoreAppointment(a schedule.Appointment) error {
	if !schedule.IsValidDate(a.Date) {
		return schedule.ErrInvalidDate
	}
	if !schedule.IsValidTime(a.Time) {
		return schedule.ErrInvalidTime
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ledger.HasAppointmentAt(a.Date, a.Time) {
		return schedule.ErrAppointmentExists
	}

	app := a
	pool := schedule.PoolRegular
	if app.Emergency {
		pool = schedule.PoolEmergency
	}
	if !d.slots.Book(pool, app.Time, app.ID) {
		return schedule.ErrSlotUnavailable
	}
	if app.Emergency {
		d.ledger.RecordEmergency(&app)
	} else {
		d.ledger.RecordRegular(&app)
	}
	return nil
}

// Appointments returns a copy of the doctor's appointment history in
// insertion order.
func (d *Doctor) Appointments() []schedule.Appointment {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]schedule.Appointment, 0, len(d.ledger.Appointments()))
	for _, a := range d.ledger.Appointments() {
		out = append(out, *a)
	}
	return out
}

// RegularQueue returns a copy of the regular appointments in booking order.
func (d *Doctor) RegularQueue() []schedule.Appointment {
	d.mu.Lock()
	defer d.mu.Unlock()

	queue := d.ledger.RegularQueue()
	out := make([]schedule.Appointment, 0, len(queue))
	for _, a := range queue {
		out = append(out, *a)
	}
	return out
}

// Slots returns a copy of the pool's slots in insertion order.
func (d *Doctor) Slots(p schedule.Pool) []schedule.Slot {
	d.mu.Lock()
	defer d.mu.Unlock()

	slots := d.slots.Slots(p)
	out := make([]schedule.Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, *s)
	}
	return out
}

// FreeSlotTimes returns the times of the pool's unbooked slots.
func (d *Doctor) FreeSlotTimes(p schedule.Pool) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []string
	for _, s := range d.slots.FreeSlots(p) {
		out = append(out, s.Time)
	}
	return out
}

// Capacities returns the configured pool maximums.
func (d *Doctor) Capacities() (maxRegular, maxEmergency int) {
	return d.maxRegular(), d.maxEmergency()
}

func (d *Doctor) maxRegular() int   { return d.capacity(schedule.PoolRegular) }
func (d *Doctor) maxEmergency() int { return d.capacity(schedule.PoolEmergency) }

func (d *Doctor) capacity(p schedule.Pool) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slots.Capacity(p)
}

// TriageDepth returns the number of patients waiting in the emergency queue.
func (d *Doctor) TriageDepth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.triage.Len()
}

// PurgeFromTriage removes a deleted patient from the emergency queue.
func (d *Doctor) PurgeFromTriage(patientID uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.triage.Remove(patientID)
}
