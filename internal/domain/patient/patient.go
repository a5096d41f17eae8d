// Package patient defines the patient record. A patient's appointment
// history is a view resolved from doctor ledgers, which stay authoritative.
package patient

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/clinicroute/clinicroute/internal/domain/location"
	"github.com/clinicroute/clinicroute/internal/domain/schedule"
)

// DefaultUrgency is the medium triage level assigned at registration.
const DefaultUrgency = 3

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

type Patient struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name   string `json:"name"`
	Sector string `json:"sector"`

	// UrgencyLevel is reset on every emergency request; 1 is most critical.
	UrgencyLevel int `json:"urgency_level"`
}

func New(name, sector string) (*Patient, error) {
	if name == "" || len(name) > 30 || !namePattern.MatchString(name) {
		return nil, ErrInvalidName
	}
	if !location.IsValidSector(sector) {
		return nil, location.ErrInvalidSector
	}
	return &Patient{
		ID:           uuid.New(),
		CreatedAt:    time.Now().UTC(),
		Name:         name,
		Sector:       sector,
		UrgencyLevel: DefaultUrgency,
	}, nil
}

// SetUrgency updates the triage level, rejecting values outside 1..4.
func (p *Patient) SetUrgency(level int) error {
	if !schedule.IsValidUrgency(level) {
		return schedule.ErrInvalidUrgency
	}
	p.UrgencyLevel = level
	return nil
}
