// Package dashboard derives the doctor and patient overview screens from
// stored profiles, records and notifications.
package dashboard

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"maternity-care-server/internal/events"
	"maternity-care-server/internal/models"
	"maternity-care-server/internal/records"
	"maternity-care-server/internal/utils"
)

const (
	// DefaultNotificationLimit is how many notifications the overview shows.
	DefaultNotificationLimit = 5
	activeWindow             = 7 * 24 * time.Hour
	pregnancyWeeks           = 40
	dueDateNotSet            = "Not set"
	noRecordsLabel           = "No records"
)

// Repository is the persistence the dashboards read from.
type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListPatientsByDoctor(ctx context.Context, doctorID string) ([]models.User, error)
	ListRecords(ctx context.Context, patientID string) ([]models.HealthRecord, error)
	ListRecordsByPatients(ctx context.Context, patientIDs []string) (map[string][]models.HealthRecord, error)
	ListNotifications(ctx context.Context, doctorID string, limit int) ([]models.DoctorNotification, error)
	CountUnread(ctx context.Context, doctorID string) (int64, error)
	MarkNotificationRead(ctx context.Context, doctorID, id string) (*models.DoctorNotification, error)
}

// PatientSummary is one row of the doctor's patient list.
type PatientSummary struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	Avatar           string         `json:"avatar,omitempty"`
	Initials         string         `json:"initials"`
	Week             int            `json:"week"`
	DueDate          string         `json:"dueDate"`
	Status           records.Status `json:"status"`
	LastVisit        *time.Time     `json:"lastVisit"`
	LastVisitLabel   string         `json:"lastVisitLabel"`
	RecordCount      int            `json:"recordCount"`
	ProfileCompleted bool           `json:"profileCompleted"`
}

// Stats are the overview cards of the doctor dashboard.
type Stats struct {
	TotalPatients       int   `json:"totalPatients"`
	ActiveThisWeek      int   `json:"activeThisWeek"`
	UrgentCases         int   `json:"urgentCases"`
	UnreadNotifications int64 `json:"unreadNotifications"`
}

// NotificationView adds a relative age to a notification.
type NotificationView struct {
	models.DoctorNotification
	TimeAgo string `json:"timeAgo"`
}

// PatientDetail is a patient's full record set as seen by their doctor.
type PatientDetail struct {
	Patient  models.UserSanitized  `json:"patient"`
	Records  []models.HealthRecord `json:"records"`
	Summary  records.Summary       `json:"summary"`
	Progress float64               `json:"progress"`
}

// PatientOverview backs the patient's own dashboard.
type PatientOverview struct {
	Name        string          `json:"name"`
	CurrentWeek int             `json:"currentWeek"`
	DueDate     string          `json:"dueDate"`
	DoctorName  string          `json:"doctorName"`
	Progress    float64         `json:"progress"`
	Summary     records.Summary `json:"summary"`
}

// Service computes dashboard views.
type Service struct {
	repo Repository
	pub  events.Publisher
	log  zerolog.Logger
}

// NewService creates a Service. pub may be nil.
func NewService(repo Repository, pub events.Publisher, log zerolog.Logger) *Service {
	return &Service{repo: repo, pub: pub, log: log}
}

// Patients lists the doctor's assigned patients with their current status.
func (s *Service) Patients(ctx context.Context, doctorID string) ([]PatientSummary, error) {
	patients, byPatient, err := s.patientsWithRecords(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	out := make([]PatientSummary, 0, len(patients))
	for i := range patients {
		out = append(out, Summarize(&patients[i], byPatient[patients[i].ID]))
	}
	return out, nil
}

// Stats computes the overview cards as of now.
func (s *Service) Stats(ctx context.Context, doctorID string, now time.Time) (Stats, error) {
	patients, byPatient, err := s.patientsWithRecords(ctx, doctorID)
	if err != nil {
		return Stats{}, err
	}
	unread, err := s.repo.CountUnread(ctx, doctorID)
	if err != nil {
		return Stats{}, fmt.Errorf("count unread notifications: %w", err)
	}

	st := Stats{TotalPatients: len(patients), UnreadNotifications: unread}
	weekAgo := now.Add(-activeWindow)
	for _, p := range patients {
		recs := byPatient[p.ID]
		if hasRecordAfter(recs, weekAgo) {
			st.ActiveThisWeek++
		}
		if records.PatientStatus(recs) == records.StatusCritical {
			st.UrgentCases++
		}
	}
	return st, nil
}

// Notifications returns the doctor's newest notifications. A non-positive
// limit falls back to DefaultNotificationLimit.
func (s *Service) Notifications(ctx context.Context, doctorID string, limit int, now time.Time) ([]NotificationView, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	list, err := s.repo.ListNotifications(ctx, doctorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]NotificationView, len(list))
	for i, n := range list {
		out[i] = NotificationView{DoctorNotification: n, TimeAgo: TimeAgo(n.Timestamp, now)}
	}
	return out, nil
}

// MarkRead acknowledges one of the doctor's notifications.
func (s *Service) MarkRead(ctx context.Context, doctorID, id string) (*models.DoctorNotification, error) {
	n, err := s.repo.MarkNotificationRead(ctx, doctorID, id)
	if err != nil {
		return nil, err
	}
	if s.pub != nil {
		evt, err := events.NewEvent(events.TypeNotificationRead, events.DoctorTopic(doctorID), n.PatientID, n)
		if err == nil {
			err = s.pub.Publish(ctx, evt)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("notification_id", id).Msg("publish read event failed")
		}
	}
	return n, nil
}

// PatientRecords returns an assigned patient's records. Patients of other
// doctors are reported as not found.
func (s *Service) PatientRecords(ctx context.Context, doctorID, patientID string) (*PatientDetail, error) {
	user, err := s.repo.GetUser(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RolePatient || user.Patient == nil || user.Patient.DoctorID != doctorID {
		return nil, fmt.Errorf("patient %s %w", patientID, utils.ErrNotFound)
	}
	recs, err := s.repo.ListRecords(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if recs == nil {
		recs = []models.HealthRecord{}
	}
	return &PatientDetail{
		Patient:  user.Sanitize(),
		Records:  recs,
		Summary:  records.Summarize(recs),
		Progress: Progress(user.Patient.CurrentWeek),
	}, nil
}

// PatientOverviewOf builds the patient's own dashboard from recs.
func PatientOverviewOf(user *models.User, recs []models.HealthRecord) PatientOverview {
	o := PatientOverview{Name: user.Name, Summary: records.Summarize(recs)}
	if user.Patient != nil {
		o.CurrentWeek = user.Patient.CurrentWeek
		o.DueDate = user.Patient.DueDate
		o.DoctorName = user.Patient.DoctorName
		o.Progress = Progress(user.Patient.CurrentWeek)
	}
	return o
}

func (s *Service) patientsWithRecords(ctx context.Context, doctorID string) ([]models.User, map[string][]models.HealthRecord, error) {
	patients, err := s.repo.ListPatientsByDoctor(ctx, doctorID)
	if err != nil {
		return nil, nil, fmt.Errorf("list patients: %w", err)
	}
	ids := make([]string, len(patients))
	for i, p := range patients {
		ids[i] = p.ID
	}
	byPatient, err := s.repo.ListRecordsByPatients(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("list records: %w", err)
	}
	return patients, byPatient, nil
}

// Summarize builds the patient list row for user.
func Summarize(user *models.User, recs []models.HealthRecord) PatientSummary {
	ps := PatientSummary{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Avatar:         user.Avatar,
		Initials:       Initials(user.Name),
		DueDate:        dueDateNotSet,
		Status:         records.PatientStatus(recs),
		LastVisitLabel: noRecordsLabel,
		RecordCount:    len(recs),
	}
	if p := user.Patient; p != nil {
		ps.Week = p.CurrentWeek
		ps.ProfileCompleted = p.ProfileCompleted
		if p.DueDate != "" {
			ps.DueDate = p.DueDate
		}
	}
	if last, ok := records.LatestAny(recs); ok {
		date := last.Date
		ps.LastVisit = &date
		ps.LastVisitLabel = date.Format("2006-01-02")
	}
	return ps
}

// Progress is the share of a 40-week pregnancy completed, capped at 100.
func Progress(week int) float64 {
	if week <= 0 {
		return 0
	}
	return math.Min(float64(week)/pregnancyWeeks*100, 100)
}

// Initials takes the first letter of each word of name, upper-cased.
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		for _, r := range part {
			b.WriteRune(unicode.ToUpper(r))
			break
		}
	}
	return b.String()
}

// TimeAgo renders the age of ts at now in minutes, hours or days.
func TimeAgo(ts, now time.Time) string {
	minutes := int(now.Sub(ts) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	switch {
	case minutes < 60:
		return fmt.Sprintf("%d minutes ago", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%d hours ago", minutes/60)
	default:
		return fmt.Sprintf("%d days ago", minutes/(24*60))
	}
}

func hasRecordAfter(recs []models.HealthRecord, t time.Time) bool {
	for _, r := range recs {
		if r.Date.After(t) {
			return true
		}
	}
	return false
}
