package repository

import (
	"context"
	"errors"

	"github.com/dorian/quill/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrQuotaExhausted is returned by Commit when the guarded increment finds
// the counter already at the limit.
var ErrQuotaExhausted = errors.New("free usage quota exhausted")

// UsageRepository tracks free-tier generation usage per user.
type UsageRepository struct {
	db    *gorm.DB
	limit int
}

// NewUsageRepository creates a new UsageRepository with the given free-tier limit.
func NewUsageRepository(db *gorm.DB, limit int) *UsageRepository {
	return &UsageRepository{db: db, limit: limit}
}

// Limit returns the configured free-tier cap.
func (r *UsageRepository) Limit() int {
	return r.limit
}

// Usage returns the current free-tier usage count for a user.
// A user with no record has used nothing.
func (r *UsageRepository) Usage(ctx context.Context, userID string) (int, error) {
	var rec domain.UsageRecord
	err := r.db.WithContext(ctx).First(&rec, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.FreeUsage, nil
}

// Commit records one consumed free-tier generation. The increment is a
// single guarded UPDATE, so two concurrent commits cannot push the counter
// past the limit even when both passed the advisory check beforehand.
func (r *UsageRepository) Commit(ctx context.Context, userID string) error {
	// Ensure the row exists before the guarded increment.
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&domain.UsageRecord{UserID: userID}).Error; err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&domain.UsageRecord{}).
		Where("user_id = ? AND free_usage < ?", userID, r.limit).
		Update("free_usage", gorm.Expr("free_usage + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrQuotaExhausted
	}
	return nil
}
