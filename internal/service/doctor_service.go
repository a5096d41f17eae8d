package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicroute/clinicroute/internal/domain/doctor"
	"github.com/clinicroute/clinicroute/internal/domain/schedule"
	"github.com/clinicroute/clinicroute/pkg/metrics"
)

// Persister flushes mutated doctor schedules to the flat-file store.
// A persistence failure is reported to the caller but never rolls back
// the in-memory change.
type Persister interface {
	SaveDoctors(ctx context.Context) error
}

type DoctorService struct {
	repo      doctor.Repository
	persister Persister
	auditSvc  *AuditService
	metrics   *metrics.Collector
	log       *zap.Logger
}

func NewDoctorService(repo doctor.Repository, persister Persister, auditSvc *AuditService, m *metrics.Collector, log *zap.Logger) *DoctorService {
	return &DoctorService{repo: repo, persister: persister, auditSvc: auditSvc, metrics: m, log: log}
}

type RegisterDoctorCommand struct {
	Name              string
	Specialization    string
	Sector            string
	MaxRegularSlots   int
	MaxEmergencySlots int
}

func (s *DoctorService) Register(ctx context.Context, cmd *RegisterDoctorCommand, caller AuditEntry) (*doctor.Doctor, error) {
	d, err := doctor.New(cmd.Name, cmd.Specialization, cmd.Sector, cmd.MaxRegularSlots, cmd.MaxEmergencySlots)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, d); err != nil {
		s.log.Error("failed to create doctor", zap.Error(err))
		return nil, fmt.Errorf("creating doctor: %w", err)
	}

	caller.Action = "create"
	caller.ResourceType = "doctor"
	caller.ResourceID = d.ID.String()
	s.auditSvc.LogAsync(ctx, caller)

	s.log.Info("doctor registered",
		zap.String("doctor_id", d.ID.String()),
		zap.String("specialization", d.Specialization),
		zap.String("sector", d.Sector),
	)
	return d, nil
}

func (s *DoctorService) Get(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DoctorService) List(ctx context.Context) ([]*doctor.Doctor, error) {
	return s.repo.List(ctx)
}

// Delete removes the doctor and compacts the specialization index.
func (s *DoctorService) Delete(ctx context.Context, id uuid.UUID, caller AuditEntry) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	caller.Action = "delete"
	caller.ResourceType = "doctor"
	caller.ResourceID = id.String()
	s.auditSvc.LogAsync(ctx, caller)
	return nil
}

// AddSlot adds a slot to the doctor's regular or emergency pool and
// persists the schedule.
func (s *DoctorService) AddSlot(ctx context.Context, doctorID uuid.UUID, t string, emergency bool) error {
	d, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		return err
	}

	if emergency {
		err = d.AddEmergencySlot(t)
	} else {
		err = d.AddSlot(t)
	}
	if err != nil {
		return err
	}

	pool := string(schedule.PoolRegular)
	if emergency {
		pool = string(schedule.PoolEmergency)
	}
	s.metrics.SlotsConfiguredTotal.WithLabelValues(pool).Inc()

	if err := s.persister.SaveDoctors(ctx); err != nil {
		s.log.Error("failed to persist doctor schedule", zap.Error(err),
			zap.String("doctor_id", doctorID.String()))
		return fmt.Errorf("slot added but not persisted: %w", err)
	}
	return nil
}

// Availability answers the weaker (time-only) or stronger (date+time)
// availability question depending on whether date is set.
func (s *DoctorService) Availability(ctx context.Context, doctorID uuid.UUID, date, t string) (bool, error) {
	d, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		return false, err
	}
	if date == "" {
		return d.IsSlotAvailable(t)
	}
	return d.IsSlotAvailableOn(date, t)
}

// FreeSlots lists the unbooked slot times of both pools.
func (s *DoctorService) FreeSlots(ctx context.Context, doctorID uuid.UUID) (regular, emergency []string, err error) {
	d, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, nil, err
	}
	return d.FreeSlotTimes(schedule.PoolRegular), d.FreeSlotTimes(schedule.PoolEmergency), nil
}
