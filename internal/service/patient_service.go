package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicroute/clinicroute/internal/domain/doctor"
	"github.com/clinicroute/clinicroute/internal/domain/patient"
)

// HistoryRepository is the append-only medical history log.
type HistoryRepository interface {
	Append(patientID uuid.UUID, record string) error
	List(patientID uuid.UUID) ([]string, error)
}

type PatientService struct {
	repo       patient.Repository
	doctorRepo doctor.Repository
	history    HistoryRepository
	auditSvc   *AuditService
	log        *zap.Logger
}

func NewPatientService(repo patient.Repository, doctorRepo doctor.Repository, history HistoryRepository, auditSvc *AuditService, log *zap.Logger) *PatientService {
	return &PatientService{repo: repo, doctorRepo: doctorRepo, history: history, auditSvc: auditSvc, log: log}
}

func (s *PatientService) Register(ctx context.Context, name, sector string, caller AuditEntry) (*patient.Patient, error) {
	p, err := patient.New(name, sector)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("failed to create patient", zap.Error(err))
		return nil, fmt.Errorf("creating patient: %w", err)
	}

	caller.Action = "create"
	caller.ResourceType = "patient"
	caller.ResourceID = p.ID.String()
	s.auditSvc.LogAsync(ctx, caller)

	return p, nil
}

func (s *PatientService) Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PatientService) List(ctx context.Context) ([]*patient.Patient, error) {
	return s.repo.List(ctx)
}

// Delete removes the patient record and purges the patient from every
// doctor's emergency queue. Appointment history stays in the doctors'
// ledgers; the ID-based references cannot dangle.
func (s *PatientService) Delete(ctx context.Context, id uuid.UUID, caller AuditEntry) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	doctors, err := s.doctorRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("purging triage queues: %w", err)
	}
	for _, d := range doctors {
		if d.PurgeFromTriage(id) {
			s.log.Info("purged deleted patient from triage queue",
				zap.String("patient_id", id.String()),
				zap.String("doctor_id", d.ID.String()),
			)
		}
	}

	caller.Action = "delete"
	caller.ResourceType = "patient"
	caller.ResourceID = id.String()
	s.auditSvc.LogAsync(ctx, caller)
	return nil
}

// AddHistory appends a record to the patient's medical history log.
func (s *PatientService) AddHistory(ctx context.Context, patientID uuid.UUID, record string, caller AuditEntry) error {
	if _, err := s.repo.GetByID(ctx, patientID); err != nil {
		return err
	}
	if err := s.history.Append(patientID, record); err != nil {
		return err
	}

	caller.Action = "update"
	caller.ResourceType = "medical_history"
	caller.ResourceID = patientID.String()
	s.auditSvc.LogAsync(ctx, caller)
	return nil
}

// History lists the patient's medical history records.
func (s *PatientService) History(ctx context.Context, patientID uuid.UUID) ([]string, error) {
	if _, err := s.repo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.history.List(patientID)
}
