package repos

import (
	"context"

	"localbazaar/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ReportRepo struct{ db *sqlx.DB }

func NewReportRepo(db *sqlx.DB) *ReportRepo { return &ReportRepo{db: db} }

const reportSelect = `
  SELECT
    r.id, r.listing_id, r.reporter_id, r.reason, r.description, r.status,
    r.reviewed_by, r.review_notes, r.action_taken, r.reviewed_at, r.created_at, r.updated_at,
    l.id AS "listing.id", l.title AS "listing.title", l.price AS "listing.price",
    l.images AS "listing.images", l.status AS "listing.status",
    u.id AS "reporter.id", u.name AS "reporter.name", u.email AS "reporter.email",
    u.phone AS "reporter.phone", u.campus AS "reporter.campus",
    u.profile_image AS "reporter.profile_image"
  FROM reports r
  JOIN listings l ON l.id = r.listing_id
  JOIN users u ON u.id = r.reporter_id`

func (r *ReportRepo) Create(ctx context.Context, rep *domain.Report) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports(id, listing_id, reporter_id, reason, description, status,
		                    action_taken, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?,?,?)
	`, rep.ID, rep.ListingID, rep.ReporterID, rep.Reason, rep.Description, rep.Status,
		rep.ActionTaken, rep.CreatedAt, rep.UpdatedAt)
	return err
}

func (r *ReportRepo) Get(ctx context.Context, id string) (*domain.Report, error) {
	var rep domain.Report
	if err := r.db.GetContext(ctx, &rep, reportSelect+` WHERE r.id = ?`, id); err != nil {
		return nil, err
	}
	return &rep, nil
}

// List returns reports newest first; an empty status means every report.
func (r *ReportRepo) List(ctx context.Context, status string) ([]domain.Report, error) {
	out := []domain.Report{}
	if status == "" {
		err := r.db.SelectContext(ctx, &out, reportSelect+` ORDER BY r.created_at DESC`)
		return out, err
	}
	err := r.db.SelectContext(ctx, &out, reportSelect+`
  WHERE r.status = ?
  ORDER BY r.created_at DESC`, status)
	return out, err
}

func (r *ReportRepo) ListByReporter(ctx context.Context, reporterID string) ([]domain.Report, error) {
	out := []domain.Report{}
	err := r.db.SelectContext(ctx, &out, reportSelect+`
  WHERE r.reporter_id = ?
  ORDER BY r.created_at DESC`, reporterID)
	return out, err
}

// Review stores the admin's decision on rep and applies the moderation
// action in the same transaction. rep must carry the new status, reviewer,
// notes, action and timestamps.
func (r *ReportRepo) Review(ctx context.Context, rep *domain.Report, sellerID string) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE reports
			SET status=?, reviewed_by=?, review_notes=?, action_taken=?, reviewed_at=?, updated_at=?
			WHERE id=?
		`, rep.Status, rep.ReviewedBy, rep.ReviewNotes, rep.ActionTaken, rep.ReviewedAt, rep.UpdatedAt, rep.ID); err != nil {
			return err
		}
		switch rep.ActionTaken {
		case domain.ActionListingRemoved:
			_, err := removeListing(ctx, tx, rep.ListingID)
			return err
		case domain.ActionUserSuspended:
			return setUserActive(ctx, tx, sellerID, false)
		}
		return nil
	})
}
