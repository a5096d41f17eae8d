package doctor

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicroute/clinicroute/internal/domain/location"
	"github.com/clinicroute/clinicroute/internal/domain/schedule"
)

func newTestDoctor(t *testing.T) *Doctor {
	t.Helper()
	d, err := New("Sara Khan", "Cardiology", "G-9", 3, 2)
	require.NoError(t, err)
	return d
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name           string
		doctorName     string
		specialization string
		sector         string
		maxRegular     int
		maxEmergency   int
		wantErr        error
	}{
		{"empty name", "", "Cardiology", "G-9", 3, 2, ErrInvalidName},
		{"name too long", "abcdefghijklmnopqrstuvwxyz12345", "Cardiology", "G-9", 3, 2, ErrInvalidName},
		{"name with symbols", "Dr. Khan!", "Cardiology", "G-9", 3, 2, ErrInvalidName},
		{"empty specialization", "Sara Khan", "", "G-9", 3, 2, ErrInvalidSpecialization},
		{"specialization too long", "Sara Khan", "abcdefghijklmnopqrstu", "G-9", 3, 2, ErrInvalidSpecialization},
		{"unknown sector", "Sara Khan", "Cardiology", "H-11", 3, 2, location.ErrInvalidSector},
		{"zero regular capacity", "Sara Khan", "Cardiology", "G-9", 0, 2, ErrInvalidCapacity},
		{"zero emergency capacity", "Sara Khan", "Cardiology", "G-9", 3, 0, ErrInvalidCapacity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.doctorName, tc.specialization, tc.sector, tc.maxRegular, tc.maxEmergency)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestBookRegular(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddSlot("09:00"))

	patientID := uuid.New()
	app, err := d.BookRegular(patientID, "01-09-2026", "09:00")
	require.NoError(t, err)
	assert.Equal(t, d.ID, app.DoctorID)
	assert.Equal(t, patientID, app.PatientID)
	assert.False(t, app.Emergency)

	// The slot is consumed; a second booking at the same time fails.
	_, err = d.BookRegular(uuid.New(), "02-09-2026", "09:00")
	assert.ErrorIs(t, err, schedule.ErrSlotUnavailable)
}

func TestBookRegularRejectsDuplicateDateTime(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddSlot("09:00"))

	patientID := uuid.New()
	_, err := d.BookRegular(patientID, "01-09-2026", "09:00")
	require.NoError(t, err)

	// Cancelling frees the slot but a history collision is what the
	// availability check guards, so rebooking the same pair works only
	// after the old appointment is gone.
	removed, found := d.Cancel(patientID)
	require.True(t, found)
	require.Len(t, removed, 1)

	_, err = d.BookRegular(uuid.New(), "01-09-2026", "09:00")
	assert.NoError(t, err)
}

func TestBookRegularValidatesInput(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddSlot("09:00"))

	_, err := d.BookRegular(uuid.New(), "2026-09-01", "09:00")
	assert.ErrorIs(t, err, schedule.ErrInvalidDate)

	_, err = d.BookRegular(uuid.New(), "01-09-2026", "9am")
	assert.ErrorIs(t, err, schedule.ErrInvalidTime)
}

func TestIsSlotAvailableOn(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddSlot("09:00"))

	available, err := d.IsSlotAvailableOn("01-09-2026", "09:00")
	require.NoError(t, err)
	assert.True(t, available)

	_, err = d.BookRegular(uuid.New(), "01-09-2026", "09:00")
	require.NoError(t, err)

	available, err = d.IsSlotAvailableOn("02-09-2026", "09:00")
	require.NoError(t, err)
	assert.False(t, available, "slot is booked regardless of date")
}

func TestAssignEmergencyBooksImmediately(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddEmergencySlot("11:00"))

	patientID := uuid.New()
	app, err := d.AssignEmergency(patientID, 2, "01-09-2026")
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, patientID, app.PatientID)
	assert.Equal(t, "11:00", app.Time)
	assert.True(t, app.Emergency)
	assert.Zero(t, d.TriageDepth())
}

func TestAssignEmergencyQueuesWhenNoSlotFree(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddEmergencySlot("11:00"))

	_, err := d.AssignEmergency(uuid.New(), 2, "01-09-2026")
	require.NoError(t, err)

	app, err := d.AssignEmergency(uuid.New(), 1, "01-09-2026")
	require.NoError(t, err)
	assert.Nil(t, app, "patient waits in the queue")
	assert.Equal(t, 1, d.TriageDepth())
}

func TestAssignEmergencyServesMostCriticalWaiter(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddEmergencySlot("11:00"))

	holder := uuid.New()
	_, err := d.AssignEmergency(holder, 2, "01-09-2026")
	require.NoError(t, err)

	critical := uuid.New()
	app, err := d.AssignEmergency(critical, 1, "01-09-2026")
	require.NoError(t, err)
	require.Nil(t, app)

	// Freeing the slot and requesting again serves the most critical
	// waiter, not the requester.
	_, found := d.Cancel(holder)
	require.True(t, found)

	stable := uuid.New()
	app, err = d.AssignEmergency(stable, 3, "02-09-2026")
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, critical, app.PatientID)
	assert.Equal(t, 1, d.TriageDepth(), "the stable requester keeps waiting")
}

func TestDrainTriageBooksInUrgencyOrder(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddEmergencySlot("11:00"))
	require.NoError(t, d.AddEmergencySlot("12:00"))

	holder := uuid.New()
	_, err := d.AssignEmergency(holder, 2, "01-09-2026")
	require.NoError(t, err)
	second, err := d.AssignEmergency(uuid.New(), 2, "01-09-2026")
	require.NoError(t, err)
	require.NotNil(t, second)

	stable := uuid.New()
	critical := uuid.New()
	_, err = d.AssignEmergency(stable, 4, "01-09-2026")
	require.NoError(t, err)
	_, err = d.AssignEmergency(critical, 1, "01-09-2026")
	require.NoError(t, err)
	require.Equal(t, 2, d.TriageDepth())

	_, found := d.Cancel(holder)
	require.True(t, found)

	booked := d.DrainTriage("02-09-2026")
	require.Len(t, booked, 1)
	assert.Equal(t, critical, booked[0].PatientID)
	assert.Equal(t, 1, d.TriageDepth())
}

func TestCancelFreesSlotsAndHistory(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddSlot("09:00"))
	require.NoError(t, d.AddEmergencySlot("11:00"))

	patientID := uuid.New()
	_, err := d.BookRegular(patientID, "01-09-2026", "09:00")
	require.NoError(t, err)
	_, err = d.AssignEmergency(patientID, 1, "01-09-2026")
	require.NoError(t, err)

	removed, found := d.Cancel(patientID)
	require.True(t, found)
	assert.Len(t, removed, 2)
	assert.Empty(t, d.Appointments())

	available, err := d.IsSlotAvailable("09:00")
	require.NoError(t, err)
	assert.True(t, available)
	assert.True(t, d.HasEmergencySlot())
}

func TestCancelUnknownPatient(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddSlot("09:00"))

	removed, found := d.Cancel(uuid.New())
	assert.False(t, found)
	assert.Empty(t, removed)
}

func TestMarkMissedAndRebook(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddSlot("09:00"))
	require.NoError(t, d.AddSlot("10:00"))

	patientID := uuid.New()
	_, err := d.BookRegular(patientID, "01-09-2026", "09:00")
	require.NoError(t, err)

	missed, err := d.MarkMissed(patientID)
	require.NoError(t, err)
	assert.True(t, missed.Missed)

	rebooked, err := d.Rebook(patientID, "02-09-2026", "10:00")
	require.NoError(t, err)
	assert.Equal(t, "02-09-2026", rebooked.Date)
	assert.Equal(t, "10:00", rebooked.Time)
	assert.False(t, rebooked.Missed)

	// The old slot is free again; the ledger holds a single appointment.
	available, err := d.IsSlotAvailable("09:00")
	require.NoError(t, err)
	assert.True(t, available)
	assert.Len(t, d.Appointments(), 1)
}

func TestRebookRequiresMissedAppointment(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddSlot("09:00"))
	require.NoError(t, d.AddSlot("10:00"))

	patientID := uuid.New()
	_, err := d.BookRegular(patientID, "01-09-2026", "09:00")
	require.NoError(t, err)

	_, err = d.Rebook(patientID, "02-09-2026", "10:00")
	assert.ErrorIs(t, err, schedule.ErrNoMissedAppointment)
}

func TestRebookRejectsOccupiedTarget(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddSlot("09:00"))
	require.NoError(t, d.AddSlot("10:00"))

	patientID := uuid.New()
	_, err := d.BookRegular(patientID, "01-09-2026", "09:00")
	require.NoError(t, err)
	_, err = d.BookRegular(uuid.New(), "01-09-2026", "10:00")
	require.NoError(t, err)

	_, err = d.MarkMissed(patientID)
	require.NoError(t, err)

	// The 10:00 slot is booked, so no regular slot qualifies.
	_, err = d.Rebook(patientID, "02-09-2026", "10:00")
	assert.ErrorIs(t, err, schedule.ErrSlotUnavailable)
}

func TestRebookEmergencyAdoptsSlotTime(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddEmergencySlot("11:00"))
	require.NoError(t, d.AddEmergencySlot("12:00"))

	patientID := uuid.New()
	app, err := d.AssignEmergency(patientID, 1, "01-09-2026")
	require.NoError(t, err)
	require.Equal(t, "11:00", app.Time)

	_, err = d.MarkMissed(patientID)
	require.NoError(t, err)

	rebooked, err := d.Rebook(patientID, "02-09-2026", "09:00")
	require.NoError(t, err)
	assert.Equal(t, "12:00", rebooked.Time, "emergency rebooking takes the free slot's time")
	assert.Equal(t, "02-09-2026", rebooked.Date)
	assert.False(t, rebooked.Missed)
}

func TestRestoreAppointmentReplaysValidation(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddSlot("09:00"))

	app := schedule.Appointment{
		ID:        uuid.New(),
		DoctorID:  d.ID,
		PatientID: uuid.New(),
		Date:      "01-09-2026",
		Time:      "09:00",
	}
	require.NoError(t, d.RestoreAppointment(app))

	// The same (date, time) pair cannot be restored twice.
	dup := app
	dup.ID = uuid.New()
	assert.ErrorIs(t, d.RestoreAppointment(dup), schedule.ErrAppointmentExists)

	bad := app
	bad.Time = "junk"
	assert.ErrorIs(t, d.RestoreAppointment(bad), schedule.ErrInvalidTime)
}

func TestPurgeFromTriage(t *testing.T) {
	d := newTestDoctor(t)
	require.NoError(t, d.AddEmergencySlot("11:00"))

	_, err := d.AssignEmergency(uuid.New(), 2, "01-09-2026")
	require.NoError(t, err)

	waiting := uuid.New()
	_, err = d.AssignEmergency(waiting, 3, "01-09-2026")
	require.NoError(t, err)
	require.Equal(t, 1, d.TriageDepth())

	assert.True(t, d.PurgeFromTriage(waiting))
	assert.Zero(t, d.TriageDepth())
	assert.False(t, d.PurgeFromTriage(waiting))
}
