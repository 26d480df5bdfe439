// Package records holds a patient's health record log together with the
// aggregation and classification rules computed over it.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"maternity-care-server/internal/events"
	"maternity-care-server/internal/models"
	"maternity-care-server/internal/utils"
)

// Repository is the persistence the record store needs.
type Repository interface {
	AppendRecord(ctx context.Context, rec *models.HealthRecord, notif *models.DoctorNotification) error
	ListRecords(ctx context.Context, patientID string) ([]models.HealthRecord, error)
}

// Owner identifies the patient a store belongs to and the doctor who is told
// about new records.
type Owner struct {
	PatientID   string
	PatientName string
	DoctorID    string
}

// OwnerOf derives the owner of a patient user.
func OwnerOf(user *models.User) Owner {
	o := Owner{PatientID: user.ID, PatientName: user.Name}
	if user.Patient != nil {
		o.DoctorID = user.Patient.DoctorID
	}
	return o
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithPublisher announces new records and notifications.
func WithPublisher(p events.Publisher) Option {
	return func(s *Store) { s.pub = p }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// Store is one patient's append-only record log, held in memory in
// insertion order and written through to the repository.
type Store struct {
	repo  Repository
	owner Owner
	pub   events.Publisher
	now   func() time.Time
	log   zerolog.Logger

	mu      sync.RWMutex
	records []models.HealthRecord
}

func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Load reads the owner's records from repo.
func Load(ctx context.Context, repo Repository, owner Owner, opts ...Option) (*Store, error) {
	s := &Store{
		repo:  repo,
		owner: owner,
		now:   defaultNow,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	recs, err := repo.ListRecords(ctx, owner.PatientID)
	if err != nil {
		return nil, fmt.Errorf("load records of %s: %w", owner.PatientID, err)
	}
	s.records = recs
	return s, nil
}

// AddRecord validates payload against t, stamps it and appends it. The
// doctor notification is written in the same transaction. Nothing is stored
// when validation fails.
func (s *Store) AddRecord(ctx context.Context, t models.RecordType, payload models.Payload) (models.HealthRecord, error) {
	if err := validatePayload(t, payload); err != nil {
		return models.HealthRecord{}, err
	}

	s.mu.Lock()
	rec := models.HealthRecord{
		PatientID: s.owner.PatientID,
		Date:      s.now(),
		Type:      t,
		Payload:   payload,
	}
	notif := NotificationFor(s.owner, rec)
	if err := s.repo.AppendRecord(ctx, &rec, notif); err != nil {
		s.mu.Unlock()
		return models.HealthRecord{}, fmt.Errorf("append %s record: %w", t, err)
	}
	s.records = append(s.records, rec)
	s.mu.Unlock()

	s.log.Info().
		Str("patient_id", rec.PatientID).
		Str("record_id", rec.ID).
		Str("type", string(t)).
		Int64("sequence", rec.Sequence).
		Msg("health record added")

	s.announce(ctx, rec, notif)
	return rec, nil
}

// AddRawRecord decodes a JSON payload for t and adds it.
func (s *Store) AddRawRecord(ctx context.Context, t models.RecordType, raw json.RawMessage) (models.HealthRecord, error) {
	if !t.Valid() {
		return models.HealthRecord{}, utils.NewValidationError("type", "must be one of %v", models.RecordTypes)
	}
	payload, err := models.DecodePayload(t, raw)
	if err != nil {
		return models.HealthRecord{}, utils.NewValidationError("data", "%v", err)
	}
	return s.AddRecord(ctx, t, payload)
}

// Records returns a copy of every record in insertion order.
func (s *Store) Records() []models.HealthRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.HealthRecord, len(s.records))
	copy(out, s.records)
	return out
}

// RecordsOfType returns the records of type t in insertion order.
func (s *Store) RecordsOfType(t models.RecordType) []models.HealthRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return OfType(s.records, t)
}

// LatestOfType returns the record of type t with the greatest date.
func (s *Store) LatestOfType(t models.RecordType) (models.HealthRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Latest(s.records, t)
}

// Owner returns who the store belongs to.
func (s *Store) Owner() Owner {
	return s.owner
}

// OfType filters records by type, keeping their order.
func OfType(records []models.HealthRecord, t models.RecordType) []models.HealthRecord {
	out := make([]models.HealthRecord, 0, len(records))
	for _, r := range records {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// Latest returns the record of type t with the greatest date. Among equal
// dates the one appearing later in records wins.
func Latest(records []models.HealthRecord, t models.RecordType) (models.HealthRecord, bool) {
	var best models.HealthRecord
	found := false
	for _, r := range records {
		if r.Type != t {
			continue
		}
		if !found || !r.Date.Before(best.Date) {
			best = r
			found = true
		}
	}
	return best, found
}

// LatestAny returns the most recent record of any type.
func LatestAny(records []models.HealthRecord) (models.HealthRecord, bool) {
	var best models.HealthRecord
	found := false
	for _, r := range records {
		if !found || !r.Date.Before(best.Date) {
			best = r
			found = true
		}
	}
	return best, found
}

func validatePayload(t models.RecordType, payload models.Payload) error {
	if !t.Valid() {
		return utils.NewValidationError("type", "must be one of %v", models.RecordTypes)
	}
	if payload == nil {
		return utils.NewValidationError("data", "is required")
	}
	if payload.RecordType() != t {
		return utils.NewValidationError("data", "is a %s payload, expected %s", payload.RecordType(), t)
	}
	if err := utils.Validate(payload); err != nil {
		var ve *utils.ValidationError
		if errors.As(err, &ve) {
			return utils.NewValidationError("data."+ve.Field, "%s", ve.Message)
		}
		return err
	}
	return nil
}

func (s *Store) announce(ctx context.Context, rec models.HealthRecord, notif *models.DoctorNotification) {
	if s.pub == nil {
		return
	}
	publish := func(eventType, topic string, data interface{}) {
		evt, err := events.NewEvent(eventType, topic, rec.PatientID, data)
		if err == nil {
			err = s.pub.Publish(ctx, evt)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("topic", topic).Msg("publish failed")
		}
	}
	publish(events.TypeRecordAdded, events.PatientTopic(rec.PatientID), rec)
	if notif != nil {
		publish(events.TypeNotification, events.DoctorTopic(notif.DoctorID), notif)
	}
}
