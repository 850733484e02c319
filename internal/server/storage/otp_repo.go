package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/thermolog/thermolog/pkg/models"
)

type OTPRepository struct {
	db *DB
}

func NewOTPRepository(db *DB) *OTPRepository {
	return &OTPRepository{db: db}
}

func (r *OTPRepository) CreateCode(ctx context.Context, code *models.OTPCode) error {
	query := `
		INSERT INTO otp_codes (user_id, code, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		code.UserID, code.Code, code.ExpiresAt,
	).Scan(&code.ID, &code.CreatedAt)
}

func (r *OTPRepository) GetValidCode(ctx context.Context, userID uuid.UUID, code string) (*models.OTPCode, error) {
	var otpCode models.OTPCode
	query := `
		SELECT * FROM otp_codes
		WHERE user_id = $1 AND code = $2 AND consumed = false AND expires_at >= NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &otpCode, query, userID, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &otpCode, nil
}

// Consume marks a code consumed. The conditional update makes consumption
// exclusive: of two concurrent attempts only one sees a row affected.
func (r *OTPRepository) Consume(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE otp_codes SET consumed = true WHERE id = $1 AND consumed = false`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// InvalidateUserCodes consumes all outstanding codes for a user. Called on
// reissue so at most one code is active at a time. Rows are never deleted;
// the table doubles as an audit trail.
func (r *OTPRepository) InvalidateUserCodes(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE otp_codes SET consumed = true WHERE user_id = $1 AND consumed = false`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
