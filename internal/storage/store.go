// Package storage persists doctors, patients, and users as flat JSON
// files under a data directory, holding the live records in memory. It is
// the owning store for doctor and patient lifetimes; everything else
// references records by ID.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicroute/clinicroute/internal/config"
	"github.com/clinicroute/clinicroute/internal/domain"
	"github.com/clinicroute/clinicroute/internal/domain/doctor"
	"github.com/clinicroute/clinicroute/internal/domain/patient"
	"github.com/clinicroute/clinicroute/internal/domain/schedule"
)

const (
	doctorsFile  = "doctors.json"
	patientsFile = "patients.json"
	usersFile    = "users.json"
)

type Store struct {
	mu     sync.RWMutex
	dir    string
	backup bool
	log    *zap.Logger

	doctors     map[uuid.UUID]*doctor.Doctor
	doctorOrder []uuid.UUID
	// specIndex keeps registration order per specialization.
	specIndex map[string][]uuid.UUID

	patients     map[uuid.UUID]*patient.Patient
	patientOrder []uuid.UUID

	users      map[uuid.UUID]*domain.User
	byUsername map[string]uuid.UUID
}

func NewStore(cfg config.StorageConfig, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	s := &Store{
		dir:        cfg.DataDir,
		backup:     cfg.BackupOnSave,
		log:        log,
		doctors:    make(map[uuid.UUID]*doctor.Doctor),
		specIndex:  make(map[string][]uuid.UUID),
		patients:   make(map[uuid.UUID]*patient.Patient),
		users:      make(map[uuid.UUID]*domain.User),
		byUsername: make(map[string]uuid.UUID),
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// doctorRecord is the serialized form of a doctor: identity fields, slot
// time labels per pool, and the full appointment history. Booked flags
// are not stored; they are rebuilt by replaying the appointments through
// the same validation a live booking runs.
type doctorRecord struct {
	ID                uuid.UUID              `json:"id"`
	Name              string                 `json:"name"`
	Specialization    string                 `json:"specialization"`
	Sector            string                 `json:"sector"`
	MaxRegularSlots   int                    `json:"max_regular_slots"`
	MaxEmergencySlots int                    `json:"max_emergency_slots"`
	RegularSlots      []string               `json:"regular_slots"`
	EmergencySlots    []string               `json:"emergency_slots"`
	Appointments      []schedule.Appointment `json:"appointments"`
}

func (s *Store) load() error {
	if err := s.loadDoctors(); err != nil {
		return err
	}
	if err := loadJSON(filepath.Join(s.dir, patientsFile), func(records []*patient.Patient) {
		for _, p := range records {
			s.patients[p.ID] = p
			s.patientOrder = append(s.patientOrder, p.ID)
		}
	}); err != nil {
		return fmt.Errorf("loading patients: %w", err)
	}
	if err := loadJSON(filepath.Join(s.dir, usersFile), func(records []*domain.User) {
		for _, u := range records {
			s.users[u.ID] = u
			s.byUsername[u.Username] = u.ID
		}
	}); err != nil {
		return fmt.Errorf("loading users: %w", err)
	}

	s.log.Info("store loaded",
		zap.Int("doctors", len(s.doctors)),
		zap.Int("patients", len(s.patients)),
		zap.Int("users", len(s.users)),
	)
	return nil
}

func (s *Store) loadDoctors() error {
	var records []doctorRecord
	if err := loadJSON(filepath.Join(s.dir, doctorsFile), func(r []doctorRecord) { records = r }); err != nil {
		return fmt.Errorf("loading doctors: %w", err)
	}

	for _, rec := range records {
		d, err := doctor.Rehydrate(rec.ID, rec.Name, rec.Specialization, rec.Sector,
			rec.MaxRegularSlots, rec.MaxEmergencySlots)
		if err != nil {
			return fmt.Errorf("loading doctor %s: %w", rec.ID, err)
		}
		for _, t := range rec.RegularSlots {
			if err := d.AddSlot(t); err != nil {
				return fmt.Errorf("loading doctor %s: regular slot %q: %w", rec.ID, t, err)
			}
		}
		for _, t := range rec.EmergencySlots {
			if err := d.AddEmergencySlot(t); err != nil {
				return fmt.Errorf("loading doctor %s: emergency slot %q: %w", rec.ID, t, err)
			}
		}
		for _, a := range rec.Appointments {
			if err := d.RestoreAppointment(a); err != nil {
				return fmt.Errorf("loading doctor %s: appointment at %s %s: %w", rec.ID, a.Date, a.Time, err)
			}
		}
		s.indexDoctor(d)
	}
	return nil
}

func (s *Store) indexDoctor(d *doctor.Doctor) {
	s.doctors[d.ID] = d
	s.doctorOrder = append(s.doctorOrder, d.ID)
	s.specIndex[d.Specialization] = append(s.specIndex[d.Specialization], d.ID)
}

func loadJSON[T any](path string, apply func(T)) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	apply(out)
	return nil
}

func (s *Store) writeFile(name string, v any) error {
	path := filepath.Join(s.dir, name)
	if s.backup {
		backupFile(path)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return os.Rename(tmp, path)
}

// backupFile copies an existing file aside with a timestamped .bak suffix.
// Failures are ignored; a missing backup never blocks a save.
func backupFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	stamp := time.Now().Format("20060102_150405")
	_ = os.WriteFile(fmt.Sprintf("%s.%s.bak", path, stamp), data, 0o644)
}

// ---- doctor.Repository ----

func (s *Store) Create(ctx context.Context, d *doctor.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doctors[d.ID]; ok {
		return doctor.ErrDoctorAlreadyExists
	}
	s.indexDoctor(d)
	return s.saveDoctorsLocked()
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.doctors[id]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	return d, nil
}

func (s *Store) GetByName(ctx context.Context, name string) (*doctor.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.doctorOrder {
		if s.doctors[id].Name == name {
			return s.doctors[id], nil
		}
	}
	return nil, doctor.ErrDoctorNotFound
}

func (s *Store) List(ctx context.Context) ([]*doctor.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*doctor.Doctor, 0, len(s.doctorOrder))
	for _, id := range s.doctorOrder {
		out = append(out, s.doctors[id])
	}
	return out, nil
}

func (s *Store) ListBySpecialization(ctx context.Context, specialization string) ([]*doctor.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.specIndex[specialization]
	out := make([]*doctor.Doctor, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.doctors[id])
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.doctors[id]
	if !ok {
		return doctor.ErrDoctorNotFound
	}

	delete(s.doctors, id)
	s.doctorOrder = removeID(s.doctorOrder, id)

	spec := d.Specialization
	s.specIndex[spec] = removeID(s.specIndex[spec], id)
	if len(s.specIndex[spec]) == 0 {
		delete(s.specIndex, spec)
	}
	return s.saveDoctorsLocked()
}

// SaveDoctors snapshots every doctor to the flat file. Booking flows call
// it after mutating a doctor's schedule; a write failure is reported but
// never undoes the in-memory change.
func (s *Store) SaveDoctors(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveDoctorsLocked()
}

func (s *Store) saveDoctorsLocked() error {
	records := make([]doctorRecord, 0, len(s.doctorOrder))
	for _, id := range s.doctorOrder {
		d := s.doctors[id]
		maxRegular, maxEmergency := d.Capacities()
		rec := doctorRecord{
			ID:                d.ID,
			Name:              d.Name,
			Specialization:    d.Specialization,
			Sector:            d.Sector,
			MaxRegularSlots:   maxRegular,
			MaxEmergencySlots: maxEmergency,
			Appointments:      d.Appointments(),
		}
		for _, slot := range d.Slots(schedule.PoolRegular) {
			rec.RegularSlots = append(rec.RegularSlots, slot.Time)
		}
		for _, slot := range d.Slots(schedule.PoolEmergency) {
			rec.EmergencySlots = append(rec.EmergencySlots, slot.Time)
		}
		records = append(records, rec)
	}
	return s.writeFile(doctorsFile, records)
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// ---- patient.Repository ----

func (s *Store) CreatePatient(ctx context.Context, p *patient.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.patients[p.ID]; ok {
		return patient.ErrPatientAlreadyExists
	}
	s.patients[p.ID] = p
	s.patientOrder = append(s.patientOrder, p.ID)
	return s.savePatientsLocked()
}

func (s *Store) GetPatientByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	return p, nil
}

func (s *Store) ListPatients(ctx context.Context) ([]*patient.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*patient.Patient, 0, len(s.patientOrder))
	for _, id := range s.patientOrder {
		out = append(out, s.patients[id])
	}
	return out, nil
}

func (s *Store) DeletePatient(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.patients[id]; !ok {
		return patient.ErrPatientNotFound
	}
	delete(s.patients, id)
	s.patientOrder = removeID(s.patientOrder, id)
	return s.savePatientsLocked()
}

// SavePatients snapshots every patient to the flat file.
func (s *Store) SavePatients(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savePatientsLocked()
}

func (s *Store) savePatientsLocked() error {
	records := make([]*patient.Patient, 0, len(s.patientOrder))
	for _, id := range s.patientOrder {
		records = append(records, s.patients[id])
	}
	return s.writeFile(patientsFile, records)
}

// ---- user repository ----

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[u.Username]; ok {
		return fmt.Errorf("username %q is taken", u.Username)
	}
	s.users[u.ID] = u
	s.byUsername[u.Username] = u.ID
	return s.saveUsersLocked()
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, fmt.Errorf("user %q not found", username)
	}
	return s.users[id], nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return u, nil
}

const maxFailedAttempts = 5

const lockDuration = 15 * time.Minute

func (s *Store) UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	if success {
		now := time.Now()
		u.FailedLoginCount = 0
		u.LockedUntil = nil
		u.LastLoginAt = &now
	} else {
		u.FailedLoginCount++
		if u.FailedLoginCount >= maxFailedAttempts {
			until := time.Now().Add(lockDuration)
			u.LockedUntil = &until
		}
	}
	return s.saveUsersLocked()
}

func (s *Store) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	return s.saveUsersLocked()
}

func (s *Store) saveUsersLocked() error {
	records := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		records = append(records, u)
	}
	return s.writeFile(usersFile, records)
}
