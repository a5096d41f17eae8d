package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByName(ctx context.Context, name string) (*Doctor, error)
	List(ctx context.Context) ([]*Doctor, error)

	// ListBySpecialization resolves the specialization index in
	// registration order.
	ListBySpecialization(ctx context.Context, specialization string) ([]*Doctor, error)

	// Delete removes the doctor and compacts the specialization index.
	Delete(ctx context.Context, id uuid.UUID) error
}
