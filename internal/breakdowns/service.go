package breakdowns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/connectivity"
	"github.com/ukydev/vehiclemate/internal/datasource"
	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/notify"
	"github.com/ukydev/vehiclemate/internal/repository"
	"github.com/ukydev/vehiclemate/internal/store"
)

var (
	ErrInvalidReport = errors.New("invalid breakdown report")
	ErrUnknownIssue  = errors.New("unknown breakdown issue")
)

// DefaultLatency mirrors the round trips of the reporting backend.
var DefaultLatency = datasource.Latency{
	List:   800 * time.Millisecond,
	Get:    500 * time.Millisecond,
	Create: 1000 * time.Millisecond,
	Update: 500 * time.Millisecond,
}

// NewSeedSource creates an empty in-memory report backend.
func NewSeedSource(cfg datasource.Config, logger logrus.FieldLogger) *datasource.Seed[models.BreakdownReport] {
	return datasource.NewSeed[models.BreakdownReport]("breakdowns", nil, DefaultLatency, cfg, logger)
}

// Service files and tracks breakdown reports. Reports filed offline are
// kept in an outbox until Sync.
type Service struct {
	repo     *repository.Repository[models.BreakdownReport]
	validate *validator.Validate
	notifier notify.Notifier
	now      func() time.Time
	logger   logrus.FieldLogger
}

// NewService creates the report service on top of source.
func NewService(source datasource.Source[models.BreakdownReport], st *store.Store, status connectivity.Status, notifier notify.Notifier, validate *validator.Validate, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if validate == nil {
		validate = validator.New()
	}
	opts := repository.Options{
		Name:      "breakdown reports",
		Key:       store.KeyBreakdowns,
		OutboxKey: store.KeyBreakdownsOutbox,
	}
	return &Service{
		repo:     repository.New(source, st, status, notifier, opts, logger),
		validate: validate,
		notifier: notifier,
		now:      time.Now,
		logger:   logger.WithField("service", "breakdowns"),
	}
}

// Issues returns the catalogue of reportable issues.
func (s *Service) Issues() []models.BreakdownIssue {
	out := make([]models.BreakdownIssue, len(models.BreakdownIssues))
	copy(out, models.BreakdownIssues)
	return out
}

// Report files a new pending report. Nothing is stored when the input is
// incomplete.
func (s *Service) Report(ctx context.Context, in models.BreakdownInput) (repository.Result[models.BreakdownReport], error) {
	if err := s.validate.Struct(in); err != nil {
		s.notify(notify.LevelError, "Please fill in all required fields")
		return repository.Result[models.BreakdownReport]{}, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}
	if _, ok := models.FindIssue(in.IssueID); !ok {
		s.notify(notify.LevelError, "Please select a valid issue")
		return repository.Result[models.BreakdownReport]{}, fmt.Errorf("%w: %s", ErrUnknownIssue, in.IssueID)
	}

	report := models.BreakdownReport{
		ID:          "report-" + uuid.Must(uuid.NewV7()).String(),
		UserID:      in.UserID,
		VehicleType: in.VehicleType,
		IssueID:     in.IssueID,
		Description: in.Description,
		Location:    *in.Location,
		CreatedAt:   s.now().UTC(),
		Status:      models.StatusPending,
	}

	res, err := s.repo.Create(ctx, report)
	if err != nil {
		return res, err
	}
	s.logger.WithFields(logrus.Fields{
		"report_id": report.ID,
		"user_id":   report.UserID,
		"issue_id":  report.IssueID,
		"queued":    res.Queued,
	}).Info("Breakdown reported")
	if !res.Queued {
		s.notify(notify.LevelSuccess, "Breakdown reported successfully")
	}
	return res, nil
}

// List returns every report.
func (s *Service) List(ctx context.Context) (repository.Result[[]models.BreakdownReport], error) {
	return s.repo.List(ctx)
}

// ListForUser returns the reports filed by userID.
func (s *Service) ListForUser(ctx context.Context, userID string) (repository.Result[[]models.BreakdownReport], error) {
	res, err := s.repo.List(ctx)
	if err != nil {
		return res, err
	}
	return repository.MapResult(res, func(all []models.BreakdownReport) []models.BreakdownReport {
		out := make([]models.BreakdownReport, 0, len(all))
		for _, r := range all {
			if r.UserID == userID {
				out = append(out, r)
			}
		}
		return out
	}), nil
}

// Get returns one report.
func (s *Service) Get(ctx context.Context, id string) (repository.Result[models.BreakdownReport], error) {
	return s.repo.Get(ctx, id)
}

// Advance moves a report along pending, assigned, resolved. It needs a
// connection.
func (s *Service) Advance(ctx context.Context, id string, to models.ReportStatus, garageID string) (repository.Result[models.BreakdownReport], error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return current, err
	}
	report := current.Data
	if err := report.Advance(to, garageID); err != nil {
		return repository.Result[models.BreakdownReport]{}, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}
	return s.repo.Update(ctx, report)
}

// Pending returns reports filed offline and not yet sent.
func (s *Service) Pending() []models.BreakdownReport {
	return s.repo.Pending()
}

// Sync sends reports filed offline.
func (s *Service) Sync(ctx context.Context) (int, error) {
	return s.repo.Sync(ctx)
}

func (s *Service) notify(level notify.Level, message string) {
	if s.notifier != nil {
		s.notifier.Notify(level, message)
	}
}
