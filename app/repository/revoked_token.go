package repository

import (
	"context"
	"database/sql"
	"time"
)

// RevokedTokenRepository is the revocation registry: individual token
// identifiers revoked on logout or reset-token use, plus per-subject
// watermarks recorded on account deletion. Entries outlive their token's
// validity window only until the next sweep.
type RevokedTokenRepository struct {
	db DBTX
}

func NewRevokedTokenRepository(db DBTX) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db}
}

func (r *RevokedTokenRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	// Revoking an already-revoked identifier is a success (logout twice).
	query := `
		INSERT INTO revoked_tokens (token_id, expires_at, revoked_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE token_id = token_id
	`
	_, err := r.db.ExecContext(ctx, query, tokenID, expiresAt, time.Now())
	return err
}

func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	query := `SELECT 1 FROM revoked_tokens WHERE token_id = ?`
	var one int
	err := r.db.QueryRowContext(ctx, query, tokenID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RevokedTokenRepository) SetWatermark(ctx context.Context, subjectID string, revokedBefore time.Time) error {
	query := `
		INSERT INTO revocation_watermarks (subject_id, revoked_before)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE revoked_before = VALUES(revoked_before)
	`
	_, err := r.db.ExecContext(ctx, query, subjectID, revokedBefore)
	return err
}

// WatermarkFor returns the zero time when no watermark exists for the subject.
func (r *RevokedTokenRepository) WatermarkFor(ctx context.Context, subjectID string) (time.Time, error) {
	query := `SELECT revoked_before FROM revocation_watermarks WHERE subject_id = ?`
	var revokedBefore time.Time
	err := r.db.QueryRowContext(ctx, query, subjectID).Scan(&revokedBefore)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return revokedBefore, nil
}

func (r *RevokedTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM revoked_tokens WHERE expires_at < ?`
	result, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
