package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/clinicroute/clinicroute/internal/domain/doctor"
	"github.com/clinicroute/clinicroute/internal/domain/location"
	"github.com/clinicroute/clinicroute/internal/domain/schedule"
	"github.com/clinicroute/clinicroute/pkg/metrics"
)

// RankedDoctor pairs a doctor with their travel distance from the
// patient's sector. Distance is location.Unreachable when no path exists.
type RankedDoctor struct {
	Doctor   *doctor.Doctor
	Distance int
}

// Reachable reports whether a path from the patient's sector exists.
func (r RankedDoctor) Reachable() bool {
	return r.Distance != location.Unreachable
}

// RoutingService ranks doctors by distance from the patient and offers
// them in order until one has a free slot.
type RoutingService struct {
	graph      *location.Graph
	doctorRepo doctor.Repository
	appointSvc *AppointmentService
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewRoutingService(graph *location.Graph, doctorRepo doctor.Repository, appointSvc *AppointmentService, m *metrics.Collector, log *zap.Logger) *RoutingService {
	return &RoutingService{
		graph:      graph,
		doctorRepo: doctorRepo,
		appointSvc: appointSvc,
		metrics:    m,
		log:        log,
	}
}

// Rank returns the doctors with the exact specialization, ordered by
// shortest-path distance from the patient's sector. Doctors in sectors
// with no path (or never connected to the graph) carry the Unreachable
// sentinel and sort last. Equal distances keep registration order.
func (s *RoutingService) Rank(ctx context.Context, patientSector, specialization string) ([]RankedDoctor, error) {
	if !location.IsValidSector(patientSector) {
		return nil, location.ErrInvalidSector
	}

	ctx, span := otel.Tracer("routing").Start(ctx, "routing.rank")
	defer span.End()
	span.SetAttributes(
		attribute.String("sector", patientSector),
		attribute.String("specialization", specialization),
	)

	doctors, err := s.doctorRepo.ListBySpecialization(ctx, specialization)
	if err != nil {
		return nil, err
	}

	distances := s.graph.ShortestDistances(patientSector)

	ranked := make([]RankedDoctor, 0, len(doctors))
	for _, d := range doctors {
		dist, ok := distances[d.Sector]
		if !ok {
			dist = location.Unreachable
		}
		ranked = append(ranked, RankedDoctor{Doctor: d, Distance: dist})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})

	span.SetAttributes(attribute.Int("candidates", len(ranked)))
	return ranked, nil
}

// Offer walks the ranked sequence and returns the first doctor with a
// free regular slot at the requested date and time. Doctors without
// availability are skipped with a log line, not an error.
func (s *RoutingService) Offer(ctx context.Context, ranked []RankedDoctor, date, t string) (*doctor.Doctor, error) {
	if !schedule.IsValidDate(date) {
		return nil, schedule.ErrInvalidDate
	}
	if !schedule.IsValidTime(t) {
		return nil, schedule.ErrInvalidTime
	}

	for _, rd := range ranked {
		available, err := rd.Doctor.IsSlotAvailableOn(date, t)
		if err != nil {
			return nil, err
		}
		if available {
			s.metrics.RoutingOffersTotal.WithLabelValues("accepted").Inc()
			return rd.Doctor, nil
		}
		s.metrics.RoutingOffersTotal.WithLabelValues("skipped").Inc()
		s.log.Info("doctor skipped, no availability",
			zap.String("doctor_id", rd.Doctor.ID.String()),
			zap.String("date", date),
			zap.String("time", t),
		)
	}

	s.metrics.RoutingOffersTotal.WithLabelValues("exhausted").Inc()
	return nil, ErrNoDoctorAvailable
}

// BookNearest ranks doctors for the patient's request and books the
// first available one. The availability check and the booking run under
// the chosen doctor's lock inside BookRegular, so the offer result
// cannot go stale between check and act.
func (s *RoutingService) BookNearest(ctx context.Context, patientID uuid.UUID, patientSector, specialization, date, t string, caller AuditEntry) (*schedule.Appointment, int, error) {
	ctx, span := otel.Tracer("routing").Start(ctx, "routing.book_nearest")
	defer span.End()

	ranked, err := s.Rank(ctx, patientSector, specialization)
	if err != nil {
		return nil, 0, err
	}

	for _, rd := range ranked {
		available, err := rd.Doctor.IsSlotAvailableOn(date, t)
		if err != nil {
			return nil, 0, err
		}
		if !available {
			s.metrics.RoutingOffersTotal.WithLabelValues("skipped").Inc()
			continue
		}

		app, err := s.appointSvc.BookRegular(ctx, rd.Doctor.ID, patientID, date, t, caller)
		if err == nil {
			s.metrics.RoutingOffersTotal.WithLabelValues("accepted").Inc()
			span.SetAttributes(attribute.Int("distance", rd.Distance))
			return app, rd.Distance, nil
		}
		// The slot was taken between the probe and the booking by a
		// request on another doctor path; move on to the next candidate.
		s.log.Info("booking lost race, trying next doctor",
			zap.String("doctor_id", rd.Doctor.ID.String()),
			zap.Error(err),
		)
	}

	s.metrics.RoutingOffersTotal.WithLabelValues("exhausted").Inc()
	return nil, 0, ErrNoDoctorAvailable
}
