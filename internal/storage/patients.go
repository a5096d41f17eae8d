package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicroute/clinicroute/internal/domain/patient"
)

// PatientRepo adapts the store to patient.Repository. The store itself
// implements doctor.Repository, so the patient methods need a separate
// receiver to avoid name collisions.
type PatientRepo struct {
	store *Store
}

func NewPatientRepo(store *Store) *PatientRepo {
	return &PatientRepo{store: store}
}

func (r *PatientRepo) Create(ctx context.Context, p *patient.Patient) error {
	return r.store.CreatePatient(ctx, p)
}

func (r *PatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	return r.store.GetPatientByID(ctx, id)
}

func (r *PatientRepo) List(ctx context.Context) ([]*patient.Patient, error) {
	return r.store.ListPatients(ctx)
}

func (r *PatientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.DeletePatient(ctx, id)
}
