package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicroute/clinicroute/internal/domain/doctor"
	"github.com/clinicroute/clinicroute/internal/domain/patient"
	"github.com/clinicroute/clinicroute/internal/domain/schedule"
	"github.com/clinicroute/clinicroute/pkg/metrics"
)

type AppointmentService struct {
	doctorRepo  doctor.Repository
	patientRepo patient.Repository
	persister   Persister
	auditSvc    *AuditService
	metrics     *metrics.Collector
	log         *zap.Logger
}

func NewAppointmentService(
	doctorRepo doctor.Repository,
	patientRepo patient.Repository,
	persister Persister,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		persister:   persister,
		auditSvc:    auditSvc,
		metrics:     m,
		log:         log,
	}
}

// today returns the current date in the DD-MM-YYYY label format the
// scheduling core uses.
func today() string {
	return time.Now().Format("02-01-2006")
}

// BookRegular books a named doctor's regular slot for the patient.
func (s *AppointmentService) BookRegular(ctx context.Context, doctorID, patientID uuid.UUID, date, t string, caller AuditEntry) (*schedule.Appointment, error) {
	d, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	app, err := d.BookRegular(patientID, date, t)
	if err != nil {
		s.metrics.BookingsTotal.WithLabelValues("regular", "rejected").Inc()
		return nil, err
	}
	s.metrics.BookingsTotal.WithLabelValues("regular", "booked").Inc()

	s.persist(ctx, d.ID)

	caller.Action = "create"
	caller.ResourceType = "appointment"
	caller.ResourceID = app.ID.String()
	s.auditSvc.LogAsync(ctx, caller)

	s.log.Info("regular appointment booked",
		zap.String("doctor_id", doctorID.String()),
		zap.String("patient_id", patientID.String()),
		zap.String("date", date),
		zap.String("time", t),
	)
	return app, nil
}

// RequestEmergency records the patient's urgency and runs the triage
// flow on the given doctor. A nil appointment with a nil error means the
// patient is waiting in the emergency queue.
func (s *AppointmentService) RequestEmergency(ctx context.Context, doctorID, patientID uuid.UUID, urgency int, caller AuditEntry) (*schedule.Appointment, error) {
	d, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	p, err := s.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if err := p.SetUrgency(urgency); err != nil {
		return nil, err
	}

	app, err := d.AssignEmergency(patientID, urgency, today())
	if err != nil {
		s.metrics.BookingsTotal.WithLabelValues("emergency", "rejected").Inc()
		return nil, err
	}

	s.metrics.TriageQueueDepth.WithLabelValues(d.ID.String()).Set(float64(d.TriageDepth()))

	if app == nil {
		s.metrics.EmergencyWaitTotal.Inc()
		s.log.Info("emergency patient queued",
			zap.String("doctor_id", doctorID.String()),
			zap.String("patient_id", patientID.String()),
			zap.Int("urgency", urgency),
		)
		return nil, nil
	}

	s.metrics.BookingsTotal.WithLabelValues("emergency", "booked").Inc()
	s.persist(ctx, d.ID)

	caller.Action = "create"
	caller.ResourceType = "emergency_appointment"
	caller.ResourceID = app.ID.String()
	s.auditSvc.LogAsync(ctx, caller)

	return app, nil
}

// Cancel removes all of the patient's appointments with the doctor,
// frees their slots, and serves waiting emergency patients from any
// freed emergency slots. It reports whether anything was cancelled.
func (s *AppointmentService) Cancel(ctx context.Context, doctorID, patientID uuid.UUID, caller AuditEntry) (bool, error) {
	d, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return false, err
	}

	removed, found := d.Cancel(patientID)
	if !found {
		return false, nil
	}
	s.metrics.CancellationsTotal.Add(float64(len(removed)))

	// An emergency slot may have been freed; let the most critical
	// waiters claim it.
	emergencyFreed := false
	for _, a := range removed {
		if a.Emergency {
			emergencyFreed = true
			break
		}
	}
	if emergencyFreed {
		for _, booked := range d.DrainTriage(today()) {
			s.metrics.BookingsTotal.WithLabelValues("emergency", "booked").Inc()
			s.log.Info("queued emergency patient booked into freed slot",
				zap.String("doctor_id", doctorID.String()),
				zap.String("patient_id", booked.PatientID.String()),
			)
		}
		s.metrics.TriageQueueDepth.WithLabelValues(d.ID.String()).Set(float64(d.TriageDepth()))
	}

	s.persist(ctx, d.ID)

	caller.Action = "delete"
	caller.ResourceType = "appointment"
	caller.ResourceID = patientID.String()
	s.auditSvc.LogAsync(ctx, caller)

	return true, nil
}

// MarkMissed flags the patient's first active appointment with the
// doctor as missed.
func (s *AppointmentService) MarkMissed(ctx context.Context, doctorID, patientID uuid.UUID, caller AuditEntry) (*schedule.Appointment, error) {
	d, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	app, err := d.MarkMissed(patientID)
	if err != nil {
		return nil, err
	}
	s.metrics.MissedTotal.Inc()

	s.persist(ctx, d.ID)

	caller.Action = "update"
	caller.ResourceType = "appointment"
	caller.ResourceID = app.ID.String()
	caller.Changes = `{"missed":true}`
	s.auditSvc.LogAsync(ctx, caller)

	return app, nil
}

// Rebook moves the patient's missed appointment to a new date and slot.
func (s *AppointmentService) Rebook(ctx context.Context, doctorID, patientID uuid.UUID, newDate, newTime string, caller AuditEntry) (*schedule.Appointment, error) {
	d, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	app, err := d.Rebook(patientID, newDate, newTime)
	if err != nil {
		return nil, err
	}
	s.metrics.RebookedTotal.Inc()

	s.persist(ctx, d.ID)

	caller.Action = "update"
	caller.ResourceType = "appointment"
	caller.ResourceID = app.ID.String()
	caller.Changes = fmt.Sprintf(`{"rebooked_to":"%s %s"}`, newDate, newTime)
	s.auditSvc.LogAsync(ctx, caller)

	return app, nil
}

// ListForDoctor returns the doctor's full appointment history.
func (s *AppointmentService) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]schedule.Appointment, error) {
	d, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return d.Appointments(), nil
}

// ListForPatient assembles the patient's appointment view from every
// doctor's ledger. The ledgers stay authoritative; this is a read-only
// projection.
func (s *AppointmentService) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]schedule.Appointment, error) {
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	doctors, err := s.doctorRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []schedule.Appointment
	for _, d := range doctors {
		for _, a := range d.Appointments() {
			if a.PatientID == patientID {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

// persist flushes doctor schedules after a booking mutation. Write
// failures are logged and surfaced through metrics only; the in-memory
// booking already happened and stays valid.
func (s *AppointmentService) persist(ctx context.Context, doctorID uuid.UUID) {
	if err := s.persister.SaveDoctors(ctx); err != nil {
		s.log.Error("failed to persist doctor schedules",
			zap.Error(err),
			zap.String("doctor_id", doctorID.String()),
		)
	}
}
