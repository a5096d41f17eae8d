package schedule

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAppointment(patientID uuid.UUID, date, t string, emergency bool) *Appointment {
	return &Appointment{
		ID:        uuid.New(),
		DoctorID:  uuid.New(),
		PatientID: patientID,
		Date:      date,
		Time:      t,
		Emergency: emergency,
	}
}

func TestLedgerRegularQueueFollowsBookingOrder(t *testing.T) {
	l := NewLedger()

	first := newAppointment(uuid.New(), "01-09-2026", "09:00", false)
	emergency := newAppointment(uuid.New(), "01-09-2026", "09:30", true)
	second := newAppointment(uuid.New(), "01-09-2026", "10:00", false)

	l.RecordRegular(first)
	l.RecordEmergency(emergency)
	l.RecordRegular(second)

	assert.Len(t, l.Appointments(), 3)

	queue := l.RegularQueue()
	require.Len(t, queue, 2)
	assert.Equal(t, first.ID, queue[0].ID)
	assert.Equal(t, second.ID, queue[1].ID)
}

func TestLedgerHasAppointmentAt(t *testing.T) {
	l := NewLedger()
	l.RecordRegular(newAppointment(uuid.New(), "01-09-2026", "09:00", false))

	assert.True(t, l.HasAppointmentAt("01-09-2026", "09:00"))
	assert.False(t, l.HasAppointmentAt("02-09-2026", "09:00"))
	assert.False(t, l.HasAppointmentAt("01-09-2026", "10:00"))
}

func TestLedgerMarkMissedFlagsFirstActiveOnly(t *testing.T) {
	l := NewLedger()
	patientID := uuid.New()

	first := newAppointment(patientID, "01-09-2026", "09:00", false)
	second := newAppointment(patientID, "02-09-2026", "10:00", false)
	l.RecordRegular(first)
	l.RecordRegular(second)

	marked := l.MarkMissed(patientID)
	require.NotNil(t, marked)
	assert.Equal(t, first.ID, marked.ID)
	assert.True(t, first.Missed)
	assert.False(t, second.Missed)

	// A second call moves on to the next active appointment.
	marked = l.MarkMissed(patientID)
	require.NotNil(t, marked)
	assert.Equal(t, second.ID, marked.ID)

	assert.Nil(t, l.MarkMissed(patientID))
	assert.Nil(t, l.MarkMissed(uuid.New()))
}

func TestLedgerFindMissed(t *testing.T) {
	l := NewLedger()
	patientID := uuid.New()

	app := newAppointment(patientID, "01-09-2026", "09:00", false)
	l.RecordRegular(app)

	assert.Nil(t, l.FindMissed(patientID))
	l.MarkMissed(patientID)
	found := l.FindMissed(patientID)
	require.NotNil(t, found)
	assert.Equal(t, app.ID, found.ID)
}

func TestLedgerCancelRemovesAllForPatient(t *testing.T) {
	l := NewLedger()
	patientID := uuid.New()
	otherID := uuid.New()

	mine := newAppointment(patientID, "01-09-2026", "09:00", false)
	other := newAppointment(otherID, "01-09-2026", "10:00", false)
	mineEmergency := newAppointment(patientID, "01-09-2026", "11:00", true)
	l.RecordRegular(mine)
	l.RecordRegular(other)
	l.RecordEmergency(mineEmergency)

	removed := l.Cancel(patientID)
	require.Len(t, removed, 2)

	assert.Len(t, l.Appointments(), 1)
	assert.Equal(t, other.ID, l.Appointments()[0].ID)

	// The regular queue must not carry dangling IDs after removal.
	queue := l.RegularQueue()
	require.Len(t, queue, 1)
	assert.Equal(t, other.ID, queue[0].ID)
}

func TestLedgerCancelUnknownPatient(t *testing.T) {
	l := NewLedger()
	l.RecordRegular(newAppointment(uuid.New(), "01-09-2026", "09:00", false))

	assert.Empty(t, l.Cancel(uuid.New()))
	assert.Len(t, l.Appointments(), 1)
}
