package records

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maternity-care-server/internal/events"
	"maternity-care-server/internal/models"
	"maternity-care-server/internal/utils"
)

// -- Mock Repository --

type mockRepo struct {
	records       []models.HealthRecord
	notifications []models.DoctorNotification
	failAppend    error
}

func (m *mockRepo) AppendRecord(_ context.Context, rec *models.HealthRecord, notif *models.DoctorNotification) error {
	if m.failAppend != nil {
		return m.failAppend
	}
	rec.ID = uuid.New().String()
	rec.Sequence = int64(len(m.records) + 1)
	m.records = append(m.records, *rec)
	if notif != nil {
		notif.ID = uuid.New().String()
		notif.HealthRecordID = rec.ID
		m.notifications = append(m.notifications, *notif)
	}
	return nil
}

func (m *mockRepo) ListRecords(_ context.Context, patientID string) ([]models.HealthRecord, error) {
	var out []models.HealthRecord
	for _, r := range m.records {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fixedClock returns t on every call, letting tests create equal timestamps.
type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

var owner = Owner{PatientID: "p1", PatientName: "Priya Sharma", DoctorID: "dr_rajesh"}

func newStore(t *testing.T, repo *mockRepo, opts ...Option) *Store {
	t.Helper()
	s, err := Load(context.Background(), repo, owner, opts...)
	require.NoError(t, err)
	return s
}

func TestAddRecordAppendsAndNotifies(t *testing.T) {
	repo := &mockRepo{}
	clock := &fixedClock{t: time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)}
	s := newStore(t, repo, WithClock(clock.now))

	rec, err := s.AddRecord(context.Background(), models.RecordTypeBloodPressure,
		models.BloodPressure{Systolic: 150, Diastolic: 95, HeartRate: 88})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "p1", rec.PatientID)
	assert.Equal(t, int64(1), rec.Sequence)
	assert.True(t, rec.Date.Equal(clock.t))
	require.Len(t, s.Records(), 1)
	assert.Equal(t, rec.ID, s.Records()[0].ID)

	require.Len(t, repo.notifications, 1)
	n := repo.notifications[0]
	assert.Equal(t, "dr_rajesh", n.DoctorID)
	assert.Equal(t, "Priya Sharma", n.PatientName)
	assert.Equal(t, models.NotificationUrgent, n.Type)
	assert.Contains(t, n.Message, "150/95")
	assert.False(t, n.Read)
}

func TestAddRecordRejectsMismatchedPayload(t *testing.T) {
	repo := &mockRepo{}
	s := newStore(t, repo)

	_, err := s.AddRecord(context.Background(), models.RecordTypeSugarLevel,
		models.BloodPressure{Systolic: 120, Diastolic: 80, HeartRate: 70})
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrValidation)

	var ve *utils.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "data", ve.Field)
	assert.Empty(t, s.Records())
	assert.Empty(t, repo.records)
	assert.Empty(t, repo.notifications)
}

func TestAddRecordValidatesFields(t *testing.T) {
	tests := []struct {
		name    string
		t       models.RecordType
		payload models.Payload
		field   string
	}{
		{"missing systolic", models.RecordTypeBloodPressure, models.BloodPressure{Diastolic: 80, HeartRate: 70}, "data.systolic"},
		{"missing heart rate", models.RecordTypeBloodPressure, models.BloodPressure{Systolic: 120, Diastolic: 80}, "data.heartRate"},
		{"bad test type", models.RecordTypeSugarLevel, models.SugarLevel{Level: 90, TestType: "after_nap"}, "data.testType"},
		{"zero duration", models.RecordTypeBabyMovement, models.BabyMovement{Count: 4}, "data.duration"},
		{"mood out of range", models.RecordTypeWeeklyUpdate, models.WeeklyUpdate{Weight: 60, Mood: 11}, "data.mood"},
		{"nil payload", models.RecordTypeWeeklyUpdate, nil, "data"},
		{"unknown type", models.RecordType("diet"), models.WeeklyUpdate{Weight: 60, Mood: 5}, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{}
			s := newStore(t, repo)
			_, err := s.AddRecord(context.Background(), tt.t, tt.payload)
			var ve *utils.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.Empty(t, repo.records)
		})
	}
}

func TestAddRecordAcceptsZeroKicks(t *testing.T) {
	s := newStore(t, &mockRepo{})
	_, err := s.AddRecord(context.Background(), models.RecordTypeBabyMovement, models.BabyMovement{Count: 0, Duration: 30})
	require.NoError(t, err)
}

func TestAddRawRecord(t *testing.T) {
	s := newStore(t, &mockRepo{})
	ctx := context.Background()

	rec, err := s.AddRawRecord(ctx, models.RecordTypeSugarLevel, json.RawMessage(`{"level":95.5,"testType":"fasting","notes":"before breakfast"}`))
	require.NoError(t, err)
	sl, ok := rec.Payload.(models.SugarLevel)
	require.True(t, ok)
	assert.Equal(t, 95.5, sl.Level)
	assert.Equal(t, models.SugarTestFasting, sl.TestType)

	_, err = s.AddRawRecord(ctx, models.RecordTypeSugarLevel, json.RawMessage(`{"level":95,"testType":"fasting","systolic":120}`))
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = s.AddRawRecord(ctx, models.RecordType("nutrition"), json.RawMessage(`{}`))
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = s.AddRawRecord(ctx, models.RecordTypeBloodPressure, nil)
	assert.ErrorIs(t, err, utils.ErrValidation)

	assert.Len(t, s.Records(), 1)
}

func TestAddRecordRepositoryFailureAppendsNothing(t *testing.T) {
	repo := &mockRepo{failAppend: errors.New("disk full")}
	s := newStore(t, repo)
	_, err := s.AddRecord(context.Background(), models.RecordTypeBabyMovement, models.BabyMovement{Count: 3, Duration: 10})
	require.Error(t, err)
	assert.Empty(t, s.Records())
}

func TestRecordsOfTypePreservesInsertionOrder(t *testing.T) {
	s := newStore(t, &mockRepo{})
	ctx := context.Background()
	add := func(tp models.RecordType, p models.Payload) {
		_, err := s.AddRecord(ctx, tp, p)
		require.NoError(t, err)
	}
	add(models.RecordTypeBloodPressure, models.BloodPressure{Systolic: 110, Diastolic: 70, HeartRate: 70})
	add(models.RecordTypeSugarLevel, models.SugarLevel{Level: 90, TestType: models.SugarTestRandom})
	add(models.RecordTypeBloodPressure, models.BloodPressure{Systolic: 120, Diastolic: 75, HeartRate: 71})
	add(models.RecordTypeBloodPressure, models.BloodPressure{Systolic: 130, Diastolic: 80, HeartRate: 72})

	bps := s.RecordsOfType(models.RecordTypeBloodPressure)
	require.Len(t, bps, 3)
	for i, want := range []int{110, 120, 130} {
		bp, ok := bps[i].BloodPressure()
		require.True(t, ok)
		assert.Equal(t, want, bp.Systolic)
	}
	assert.Empty(t, s.RecordsOfType(models.RecordTypeWeeklyUpdate))

	all := s.Records()
	all[0] = models.HealthRecord{}
	assert.NotEmpty(t, s.Records()[0].ID)
}

func TestLatestOfType(t *testing.T) {
	repo := &mockRepo{}
	clock := &fixedClock{t: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
	s := newStore(t, repo, WithClock(clock.now))
	ctx := context.Background()

	_, ok := s.LatestOfType(models.RecordTypeBloodPressure)
	assert.False(t, ok)

	_, err := s.AddRecord(ctx, models.RecordTypeBloodPressure, models.BloodPressure{Systolic: 150, Diastolic: 95, HeartRate: 80})
	require.NoError(t, err)
	second, err := s.AddRecord(ctx, models.RecordTypeBloodPressure, models.BloodPressure{Systolic: 118, Diastolic: 76, HeartRate: 70})
	require.NoError(t, err)

	latest, ok := s.LatestOfType(models.RecordTypeBloodPressure)
	require.True(t, ok)
	assert.Equal(t, second.ID, latest.ID, "equal dates go to the later append")

	clock.t = clock.t.Add(-time.Hour)
	_, err = s.AddRecord(ctx, models.RecordTypeBloodPressure, models.BloodPressure{Systolic: 100, Diastolic: 60, HeartRate: 65})
	require.NoError(t, err)

	latest, ok = s.LatestOfType(models.RecordTypeBloodPressure)
	require.True(t, ok)
	assert.Equal(t, second.ID, latest.ID, "an older date does not replace the latest")
}

func TestLoadRestoresPersistedRecords(t *testing.T) {
	repo := &mockRepo{}
	s := newStore(t, repo)
	_, err := s.AddRecord(context.Background(), models.RecordTypeSugarLevel, models.SugarLevel{Level: 100, TestType: models.SugarTestPostMeal})
	require.NoError(t, err)

	reloaded := newStore(t, repo)
	assert.Len(t, reloaded.Records(), 1)
	assert.Equal(t, owner, reloaded.Owner())
}

func TestAddRecordPublishesEvents(t *testing.T) {
	broker := events.NewBroker(zerolog.Nop(), 4)
	doctorEvents, cancelDoctor := broker.Subscribe(events.DoctorTopic("dr_rajesh"))
	defer cancelDoctor()
	patientEvents, cancelPatient := broker.Subscribe(events.PatientTopic("p1"))
	defer cancelPatient()

	s := newStore(t, &mockRepo{}, WithPublisher(broker))
	rec, err := s.AddRecord(context.Background(), models.RecordTypeBloodPressure, models.BloodPressure{Systolic: 135, Diastolic: 80, HeartRate: 75})
	require.NoError(t, err)

	select {
	case evt := <-doctorEvents:
		assert.Equal(t, events.TypeNotification, evt.Type)
		var n models.DoctorNotification
		require.NoError(t, json.Unmarshal(evt.Data, &n))
		assert.Equal(t, models.NotificationWarning, n.Type)
		assert.Equal(t, rec.ID, n.HealthRecordID)
	default:
		t.Fatal("doctor was not notified")
	}

	select {
	case evt := <-patientEvents:
		assert.Equal(t, events.TypeRecordAdded, evt.Type)
		assert.Equal(t, "p1", evt.PatientID)
	default:
		t.Fatal("patient topic got no event")
	}
}

func TestNoNotificationWithoutDoctor(t *testing.T) {
	repo := &mockRepo{}
	s, err := Load(context.Background(), repo, Owner{PatientID: "p2", PatientName: "Anu"})
	require.NoError(t, err)
	_, err = s.AddRecord(context.Background(), models.RecordTypeBabyMovement, models.BabyMovement{Count: 10, Duration: 60})
	require.NoError(t, err)
	assert.Len(t, repo.records, 1)
	assert.Empty(t, repo.notifications)
}
