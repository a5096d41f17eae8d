package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinicroute/clinicroute/internal/domain"
	"github.com/clinicroute/clinicroute/internal/domain/doctor"
	"github.com/clinicroute/clinicroute/internal/domain/location"
	"github.com/clinicroute/clinicroute/internal/domain/patient"
	"github.com/clinicroute/clinicroute/pkg/metrics"
)

// A single collector for the whole test binary; promauto registers
// globally and duplicate registration panics.
var testMetrics = metrics.NewCollector("test")

type fakeDoctorRepo struct {
	doctors []*doctor.Doctor
}

func (r *fakeDoctorRepo) Create(ctx context.Context, d *doctor.Doctor) error {
	r.doctors = append(r.doctors, d)
	return nil
}

func (r *fakeDoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	for _, d := range r.doctors {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, doctor.ErrDoctorNotFound
}

func (r *fakeDoctorRepo) GetByName(ctx context.Context, name string) (*doctor.Doctor, error) {
	for _, d := range r.doctors {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, doctor.ErrDoctorNotFound
}

func (r *fakeDoctorRepo) List(ctx context.Context) ([]*doctor.Doctor, error) {
	return r.doctors, nil
}

func (r *fakeDoctorRepo) ListBySpecialization(ctx context.Context, specialization string) ([]*doctor.Doctor, error) {
	var out []*doctor.Doctor
	for _, d := range r.doctors {
		if d.Specialization == specialization {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDoctorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for i, d := range r.doctors {
		if d.ID == id {
			r.doctors = append(r.doctors[:i], r.doctors[i+1:]...)
			return nil
		}
	}
	return doctor.ErrDoctorNotFound
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*patient.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*patient.Patient)}
}

func (r *fakePatientRepo) Create(ctx context.Context, p *patient.Patient) error {
	r.patients[p.ID] = p
	return nil
}

func (r *fakePatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	return p, nil
}

func (r *fakePatientRepo) List(ctx context.Context) ([]*patient.Patient, error) {
	out := make([]*patient.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePatientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.patients[id]; !ok {
		return patient.ErrPatientNotFound
	}
	delete(r.patients, id)
	return nil
}

type noopPersister struct{}

func (noopPersister) SaveDoctors(ctx context.Context) error { return nil }

type noopAuditRepo struct{}

func (noopAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error { return nil }

func mustDoctor(t *testing.T, name, specialization, sector string) *doctor.Doctor {
	t.Helper()
	d, err := doctor.New(name, specialization, sector, 3, 2)
	require.NoError(t, err)
	return d
}

func TestRankOrdersByDistance(t *testing.T) {
	far := mustDoctor(t, "Far Doc", "Cardiology", "F-8")
	near := mustDoctor(t, "Near Doc", "Cardiology", "G-10")
	mid := mustDoctor(t, "Mid Doc", "Cardiology", "F-9")
	other := mustDoctor(t, "Skin Doc", "Dermatology", "G-10")

	repo := &fakeDoctorRepo{doctors: []*doctor.Doctor{far, near, mid, other}}
	svc := NewRoutingService(location.NewCityGraph(), repo, nil, testMetrics, zap.NewNop())

	ranked, err := svc.Rank(context.Background(), "G-9", "Cardiology")
	require.NoError(t, err)
	require.Len(t, ranked, 3, "other specializations are excluded")

	assert.Equal(t, near.ID, ranked[0].Doctor.ID)
	assert.Equal(t, 2, ranked[0].Distance)
	assert.Equal(t, mid.ID, ranked[1].Doctor.ID)
	assert.Equal(t, 3, ranked[1].Distance)
	assert.Equal(t, far.ID, ranked[2].Doctor.ID)
	assert.Equal(t, 5, ranked[2].Distance)
}

func TestRankEqualDistanceKeepsRegistrationOrder(t *testing.T) {
	first := mustDoctor(t, "First Doc", "Cardiology", "G-10")
	second := mustDoctor(t, "Second Doc", "Cardiology", "G-10")

	repo := &fakeDoctorRepo{doctors: []*doctor.Doctor{first, second}}
	svc := NewRoutingService(location.NewCityGraph(), repo, nil, testMetrics, zap.NewNop())

	ranked, err := svc.Rank(context.Background(), "G-9", "Cardiology")
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, first.ID, ranked[0].Doctor.ID)
	assert.Equal(t, second.ID, ranked[1].Doctor.ID)
}

func TestRankUnreachableSortsLast(t *testing.T) {
	reachable := mustDoctor(t, "Near Doc", "Cardiology", "G-10")
	cutOff := mustDoctor(t, "Cut Off Doc", "Cardiology", "F-8")

	graph := location.NewGraph()
	require.NoError(t, graph.AddEdge("G-9", "G-10", 2))

	repo := &fakeDoctorRepo{doctors: []*doctor.Doctor{cutOff, reachable}}
	svc := NewRoutingService(graph, repo, nil, testMetrics, zap.NewNop())

	ranked, err := svc.Rank(context.Background(), "G-9", "Cardiology")
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, reachable.ID, ranked[0].Doctor.ID)
	assert.True(t, ranked[0].Reachable())
	assert.Equal(t, cutOff.ID, ranked[1].Doctor.ID)
	assert.False(t, ranked[1].Reachable())
	assert.Equal(t, location.Unreachable, ranked[1].Distance)
}

func TestRankRejectsUnknownSector(t *testing.T) {
	svc := NewRoutingService(location.NewCityGraph(), &fakeDoctorRepo{}, nil, testMetrics, zap.NewNop())

	_, err := svc.Rank(context.Background(), "H-11", "Cardiology")
	assert.ErrorIs(t, err, location.ErrInvalidSector)
}

func TestOfferSkipsDoctorsWithoutAvailability(t *testing.T) {
	busy := mustDoctor(t, "Busy Doc", "Cardiology", "G-10")
	free := mustDoctor(t, "Free Doc", "Cardiology", "F-9")
	require.NoError(t, busy.AddSlot("09:00"))
	require.NoError(t, free.AddSlot("09:00"))
	_, err := busy.BookRegular(uuid.New(), "01-09-2026", "09:00")
	require.NoError(t, err)

	repo := &fakeDoctorRepo{doctors: []*doctor.Doctor{busy, free}}
	svc := NewRoutingService(location.NewCityGraph(), repo, nil, testMetrics, zap.NewNop())

	ranked, err := svc.Rank(context.Background(), "G-9", "Cardiology")
	require.NoError(t, err)

	chosen, err := svc.Offer(context.Background(), ranked, "01-09-2026", "09:00")
	require.NoError(t, err)
	assert.Equal(t, free.ID, chosen.ID, "the nearer but fully booked doctor is skipped")
}

func TestOfferExhausted(t *testing.T) {
	busy := mustDoctor(t, "Busy Doc", "Cardiology", "G-10")
	require.NoError(t, busy.AddSlot("09:00"))
	_, err := busy.BookRegular(uuid.New(), "01-09-2026", "09:00")
	require.NoError(t, err)

	repo := &fakeDoctorRepo{doctors: []*doctor.Doctor{busy}}
	svc := NewRoutingService(location.NewCityGraph(), repo, nil, testMetrics, zap.NewNop())

	ranked, err := svc.Rank(context.Background(), "G-9", "Cardiology")
	require.NoError(t, err)

	_, err = svc.Offer(context.Background(), ranked, "01-09-2026", "09:00")
	assert.ErrorIs(t, err, ErrNoDoctorAvailable)
}

func TestBookNearest(t *testing.T) {
	near := mustDoctor(t, "Near Doc", "Cardiology", "G-10")
	far := mustDoctor(t, "Far Doc", "Cardiology", "F-8")
	require.NoError(t, near.AddSlot("09:00"))
	require.NoError(t, far.AddSlot("09:00"))

	doctorRepo := &fakeDoctorRepo{doctors: []*doctor.Doctor{far, near}}
	patientRepo := newFakePatientRepo()
	p, err := patient.New("Ali Raza", "G-9")
	require.NoError(t, err)
	require.NoError(t, patientRepo.Create(context.Background(), p))

	auditSvc := NewAuditService(noopAuditRepo{}, testMetrics, zap.NewNop())
	defer auditSvc.Shutdown()
	appointSvc := NewAppointmentService(doctorRepo, patientRepo, noopPersister{}, auditSvc, testMetrics, zap.NewNop())
	svc := NewRoutingService(location.NewCityGraph(), doctorRepo, appointSvc, testMetrics, zap.NewNop())

	app, distance, err := svc.BookNearest(context.Background(), p.ID, "G-9", "Cardiology", "01-09-2026", "09:00", AuditEntry{})
	require.NoError(t, err)
	assert.Equal(t, near.ID, app.DoctorID)
	assert.Equal(t, 2, distance)

	// The nearest doctor is now booked; the next request lands farther out.
	p2, err := patient.New("Sana Tariq", "G-9")
	require.NoError(t, err)
	require.NoError(t, patientRepo.Create(context.Background(), p2))

	app, distance, err = svc.BookNearest(context.Background(), p2.ID, "G-9", "Cardiology", "01-09-2026", "09:00", AuditEntry{})
	require.NoError(t, err)
	assert.Equal(t, far.ID, app.DoctorID)
	assert.Equal(t, 5, distance)

	// Every slot gone.
	_, _, err = svc.BookNearest(context.Background(), p.ID, "G-9", "Cardiology", "01-09-2026", "09:00", AuditEntry{})
	assert.ErrorIs(t, err, ErrNoDoctorAvailable)
}
