package services

import (
	"context"
	"strings"
	"time"

	"localbazaar/internal/domain"
	"localbazaar/internal/metrics"
	"localbazaar/internal/repos"
	"localbazaar/internal/validate"

	"github.com/google/uuid"
)

type ReportService struct {
	Reports  *repos.ReportRepo
	Listings *repos.ListingRepo
}

func NewReportService(reports *repos.ReportRepo, listings *repos.ListingRepo) *ReportService {
	return &ReportService{Reports: reports, Listings: listings}
}

type CreateReportInput struct {
	ListingID   string `json:"productId" validate:"required"`
	Reason      string `json:"reason" validate:"required,reason"`
	Description string `json:"description" validate:"required,max=500"`
}

type ReviewInput struct {
	Status      string `json:"status" validate:"required,report_status"`
	AdminNotes  string `json:"adminNotes" validate:"max=500"`
	ActionTaken string `json:"actionTaken" validate:"omitempty,report_action"`
}

// Create files a complaint against any existing listing. Repeated reports
// by the same user are accepted.
func (s *ReportService) Create(ctx context.Context, reporter *domain.User, in CreateReportInput) (*domain.Report, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.Listings.Get(ctx, in.ListingID); err != nil {
		return nil, lookup(err, ErrListingNotFound)
	}
	now := time.Now().UTC()
	rep := &domain.Report{
		ID:          uuid.NewString(),
		ListingID:   in.ListingID,
		ReporterID:  reporter.ID,
		Reason:      in.Reason,
		Description: in.Description,
		Status:      domain.ReportPending,
		ActionTaken: domain.ActionNone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Reports.Create(ctx, rep); err != nil {
		return nil, err
	}
	return s.load(ctx, rep.ID)
}

func (s *ReportService) load(ctx context.Context, id string) (*domain.Report, error) {
	rep, err := s.Reports.Get(ctx, id)
	if err != nil {
		return nil, lookup(err, ErrReportNotFound)
	}
	return rep, nil
}

// List is the moderation queue. status defaults to pending; "all" lifts the
// filter.
func (s *ReportService) List(ctx context.Context, status string) ([]domain.Report, error) {
	switch {
	case status == "":
		status = domain.ReportPending
	case status == "all":
		status = ""
	case !domain.ReportStatusValid(status):
		return nil, validate.Fail("status", "must be one of: pending, reviewed, resolved, dismissed, all")
	}
	return s.Reports.List(ctx, status)
}

func (s *ReportService) ListForReporter(ctx context.Context, reporter *domain.User) ([]domain.Report, error) {
	return s.Reports.ListByReporter(ctx, reporter.ID)
}

// Review records an admin decision. listing_removed deletes the reported
// listing and user_suspended deactivates its seller, both atomically with
// the report update.
func (s *ReportService) Review(ctx context.Context, admin *domain.User, id string, in ReviewInput) (*domain.Report, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	rep, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.ReportCanMove(rep.Status, in.Status) {
		return nil, ErrInvalidTransition
	}
	l, err := s.Listings.Get(ctx, rep.ListingID)
	if err != nil {
		return nil, lookup(err, ErrListingNotFound)
	}

	now := time.Now().UTC()
	reviewer := admin.ID
	rep.Status = in.Status
	rep.ReviewedBy = &reviewer
	rep.ReviewedAt = &now
	rep.UpdatedAt = now
	rep.ReviewNotes = strings.TrimSpace(in.AdminNotes)
	rep.ActionTaken = in.ActionTaken
	if rep.ActionTaken == "" {
		rep.ActionTaken = domain.ActionNone
	}

	if err := s.Reports.Review(ctx, rep, l.SellerID); err != nil {
		return nil, err
	}
	metrics.ReportStatus.WithLabelValues(rep.Status, rep.ActionTaken).Inc()
	return s.load(ctx, id)
}
