package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context) ([]*Patient, error)

	// Delete removes the patient record. Purging the patient from every
	// doctor's triage queue is the service layer's job.
	Delete(ctx context.Context, id uuid.UUID) error
}
