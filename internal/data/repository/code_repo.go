package repository

import (
	"context"
	"fmt"
	"time"

	"sms-auth/internal/data/entity"
	"sms-auth/pkg/database"

	"go.uber.org/zap"
)

type CodeRepository interface {
	Create(ctx context.Context, rec *entity.CodeRecord) error
	CreateUnlessRecent(ctx context.Context, rec *entity.CodeRecord, since time.Time) (bool, error)
	CountRecent(ctx context.Context, mobile, category string, since time.Time) (int64, error)
	CountMatching(ctx context.Context, mobile, category, code string, since time.Time) (int64, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.CodeRecord, error)
	CountAll(ctx context.Context) (int64, error)
}

type codeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCodeRepository(db database.PgxIface, log *zap.Logger) CodeRepository {
	return &codeRepository{
		db:  db,
		log: log.With(zap.String("repository", "code")),
	}
}

func (r *codeRepository) Create(ctx context.Context, rec *entity.CodeRecord) error {
	query := `
		INSERT INTO sms_codes (id, mobile, code, category, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		rec.ID,
		rec.Mobile,
		rec.Code,
		rec.Category,
		rec.ExpiresAt,
		rec.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create code record",
			zap.Error(err),
			zap.String("mobile", rec.Mobile),
			zap.String("category", rec.Category),
		)
		return fmt.Errorf("create code record for %s: %w", rec.Mobile, err)
	}

	return nil
}

// CreateUnlessRecent inserts the record only when no record for the same
// (mobile, category) pair was created after `since`. The single-statement
// insert is what keeps the resend throttle race window narrow: two
// near-simultaneous sends cannot both persist.
func (r *codeRepository) CreateUnlessRecent(ctx context.Context, rec *entity.CodeRecord, since time.Time) (bool, error) {
	query := `
		INSERT INTO sms_codes (id, mobile, code, category, expires_at, created_at)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (
			SELECT 1 FROM sms_codes
			WHERE mobile = $2 AND category = $4 AND created_at > $7
		)
	`

	result, err := r.db.Exec(ctx, query,
		rec.ID,
		rec.Mobile,
		rec.Code,
		rec.Category,
		rec.ExpiresAt,
		rec.CreatedAt,
		since,
	)

	if err != nil {
		r.log.Error("Failed conditional insert of code record",
			zap.Error(err),
			zap.String("mobile", rec.Mobile),
			zap.String("category", rec.Category),
		)
		return false, fmt.Errorf("conditional create code record for %s: %w", rec.Mobile, err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *codeRepository) CountRecent(ctx context.Context, mobile, category string, since time.Time) (int64, error) {
	query := `
		SELECT COUNT(*) FROM sms_codes
		WHERE mobile = $1 AND category = $2 AND created_at > $3
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, mobile, category, since).Scan(&count); err != nil {
		r.log.Error("Failed to count recent code records",
			zap.Error(err),
			zap.String("mobile", mobile),
			zap.String("category", category),
		)
		return 0, fmt.Errorf("count recent codes for %s: %w", mobile, err)
	}

	return count, nil
}

func (r *codeRepository) CountMatching(ctx context.Context, mobile, category, code string, since time.Time) (int64, error) {
	query := `
		SELECT COUNT(*) FROM sms_codes
		WHERE mobile = $1 AND category = $2 AND code = $3 AND created_at > $4
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, mobile, category, code, since).Scan(&count); err != nil {
		r.log.Error("Failed to count matching code records",
			zap.Error(err),
			zap.String("mobile", mobile),
			zap.String("category", category),
		)
		return 0, fmt.Errorf("count matching codes for %s: %w", mobile, err)
	}

	return count, nil
}

func (r *codeRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.CodeRecord, error) {
	query := `
		SELECT id, mobile, code, category, expires_at, created_at
		FROM sms_codes
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list code records", zap.Error(err))
		return nil, fmt.Errorf("list code records: %w", err)
	}
	defer rows.Close()

	var records []*entity.CodeRecord
	for rows.Next() {
		var rec entity.CodeRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Mobile,
			&rec.Code,
			&rec.Category,
			&rec.ExpiresAt,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan code record: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate code records: %w", err)
	}

	return records, nil
}

func (r *codeRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sms_codes`).Scan(&count); err != nil {
		r.log.Error("Failed to count code records", zap.Error(err))
		return 0, fmt.Errorf("count code records: %w", err)
	}

	return count, nil
}
