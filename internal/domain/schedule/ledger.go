package schedule

import (
	"github.com/google/uuid"
)

// Appointment is a booking held by a doctor for a patient. Doctor and
// patient are referenced by ID; the records themselves live in the store.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Emergency bool      `json:"emergency"`
	Missed    bool      `json:"missed"`
}

// When returns the combined "date time" label.
func (a *Appointment) When() string {
	return a.Date + " " + a.Time
}

// Equal reports whether two appointments refer to the same booking:
// same doctor, patient, date, and time.
func (a *Appointment) Equal(other *Appointment) bool {
	return a.DoctorID == other.DoctorID &&
		a.PatientID == other.PatientID &&
		a.Date == other.Date &&
		a.Time == other.Time
}

// Ledger is the authoritative record of one doctor's appointments.
// The flat list is canonical and insertion-ordered; the regular queue is
// a booking-order projection of appointment IDs over it. Emergency
// bookings are reachable through slot AppointmentID references, so no
// copy of an appointment ever exists outside the canonical list.
type Ledger struct {
	appointments []*Appointment
	regularOrder []uuid.UUID
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// RecordRegular appends a regular appointment to the canonical list and
// to the booking-order queue.
func (l *Ledger) RecordRegular(a *Appointment) {
	l.appointments = append(l.appointments, a)
	l.regularOrder = append(l.regularOrder, a.ID)
}

// RecordEmergency appends an emergency appointment to the canonical list.
func (l *Ledger) RecordEmergency(a *Appointment) {
	l.appointments = append(l.appointments, a)
}

// Appointments returns the canonical list in insertion order.
func (l *Ledger) Appointments() []*Appointment {
	return l.appointments
}

// RegularQueue resolves the booking-order projection.
func (l *Ledger) RegularQueue() []*Appointment {
	out := make([]*Appointment, 0, len(l.regularOrder))
	for _, id := range l.regularOrder {
		if a := l.byID(id); a != nil {
			out = append(out, a)
		}
	}
	return out
}

func (l *Ledger) byID(id uuid.UUID) *Appointment {
	for _, a := range l.appointments {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// HasAppointmentAt reports whether any appointment in the doctor's
// history occupies exactly this (date, time) pair, regardless of pool.
func (l *Ledger) HasAppointmentAt(date, t string) bool {
	for _, a := range l.appointments {
		if a.Date == date && a.Time == t {
			return true
		}
	}
	return false
}

// ForPatient returns the patient's appointments in insertion order.
func (l *Ledger) ForPatient(patientID uuid.UUID) []*Appointment {
	var out []*Appointment
	for _, a := range l.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out
}

// MarkMissed flags the patient's first non-missed appointment, in
// insertion order, and returns it. At most one appointment is marked per
// call. Returns nil when the patient has no active appointment.
func (l *Ledger) MarkMissed(patientID uuid.UUID) *Appointment {
	for _, a := range l.appointments {
		if a.PatientID == patientID && !a.Missed {
			a.Missed = true
			return a
		}
	}
	return nil
}

// FindMissed returns the patient's first missed appointment, or nil.
func (l *Ledger) FindMissed(patientID uuid.UUID) *Appointment {
	for _, a := range l.appointments {
		if a.PatientID == patientID && a.Missed {
			return a
		}
	}
	return nil
}

// Cancel removes every appointment held by the patient from the canonical
// list and rebuilds the regular queue without them. The removed
// appointments are returned so the caller can release their slots.
func (l *Ledger) Cancel(patientID uuid.UUID) []*Appointment {
	var removed []*Appointment
	kept := l.appointments[:0]
	for _, a := range l.appointments {
		if a.PatientID == patientID {
			removed = append(removed, a)
		} else {
			kept = append(kept, a)
		}
	}
	l.appointments = kept

	if len(removed) > 0 {
		order := l.regularOrder[:0]
		for _, id := range l.regularOrder {
			if l.byID(id) != nil {
				order = append(order, id)
			}
		}
		l.regularOrder = order
	}
	return removed
}
