package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"health-reminder-backend/internal/model"
)

// Document keys shared with the client app's local store.
const (
	KeyMedications   = "medications"
	KeyMedicationLog = "medicationLog"
	KeyAppointments  = "appointments"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Get decodes the JSON document stored under key into dst.
	// It reports false when the key does not exist.
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Set replaces the JSON document stored under key.
	Set(ctx context.Context, key string, value any) error

	Courses(ctx context.Context) ([]model.MedicationCourse, error)
	SaveCourses(ctx context.Context, courses []model.MedicationCourse) error
	IntakeLog(ctx context.Context) (model.IntakeLog, error)
	SaveIntakeLog(ctx context.Context, log model.IntakeLog) error
	Appointments(ctx context.Context) ([]model.Appointment, error)
	SaveAppointments(ctx context.Context, appointments []model.Appointment) error

	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	CountSubscriptions(ctx context.Context) (int64, error)
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	var entry model.KVEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	if len(entry.Value) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(entry.Value, dst); err != nil {
		return false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

func (s *gormStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}

	entry := model.KVEntry{Key: key, Value: datatypes.JSON(raw), UpdatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (s *gormStore) Courses(ctx context.Context) ([]model.MedicationCourse, error) {
	courses := []model.MedicationCourse{}
	if _, err := s.Get(ctx, KeyMedications, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *gormStore) SaveCourses(ctx context.Context, courses []model.MedicationCourse) error {
	if courses == nil {
		courses = []model.MedicationCourse{}
	}
	return s.Set(ctx, KeyMedications, courses)
}

func (s *gormStore) IntakeLog(ctx context.Context) (model.IntakeLog, error) {
	log := model.IntakeLog{}
	if _, err := s.Get(ctx, KeyMedicationLog, &log); err != nil {
		return nil, err
	}
	if log == nil {
		log = model.IntakeLog{}
	}
	return log, nil
}

func (s *gormStore) SaveIntakeLog(ctx context.Context, log model.IntakeLog) error {
	if log == nil {
		log = model.IntakeLog{}
	}
	return s.Set(ctx, KeyMedicationLog, log)
}

func (s *gormStore) Appointments(ctx context.Context) ([]model.Appointment, error) {
	appointments := []model.Appointment{}
	if _, err := s.Get(ctx, KeyAppointments, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (s *gormStore) SaveAppointments(ctx context.Context, appointments []model.Appointment) error {
	if appointments == nil {
		appointments = []model.Appointment{}
	}
	return s.Set(ctx, KeyAppointments, appointments)
}

func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	return subs, nil
}

func (s *gormStore) CountSubscriptions(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.PushSubscription{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count push subscriptions: %w", err)
	}
	return count, nil
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch push subscription: %w", err)
	}
	return &sub, nil
}

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(sub).Error
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}
