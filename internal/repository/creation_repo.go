package repository

import (
	"context"
	"time"

	"github.com/dorian/quill/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreationRepository handles creation row persistence.
type CreationRepository struct {
	db *gorm.DB
}

// NewCreationRepository creates a new CreationRepository.
func NewCreationRepository(db *gorm.DB) *CreationRepository {
	return &CreationRepository{db: db}
}

// Create inserts a new creation row. The id and timestamp are assigned here;
// rows are write-once apart from the likes column.
func (r *CreationRepository) Create(ctx context.Context, creation *domain.Creation) error {
	if creation.ID == "" {
		creation.ID = uuid.New().String()
	}
	if creation.Likes == nil {
		creation.Likes = domain.StringArray{}
	}
	if creation.CreatedAt.IsZero() {
		creation.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(creation).Error
}

// GetByID retrieves a creation by its ID.
func (r *CreationRepository) GetByID(ctx context.Context, id string) (*domain.Creation, error) {
	var creation domain.Creation
	if err := r.db.WithContext(ctx).First(&creation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &creation, nil
}

// ListByOwner retrieves all creations belonging to a user, newest first.
func (r *CreationRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Creation, error) {
	var creations []domain.Creation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&creations).Error; err != nil {
		return nil, err
	}
	return creations, nil
}

// ListPublished retrieves all published creations, newest first.
func (r *CreationRepository) ListPublished(ctx context.Context) ([]domain.Creation, error) {
	var creations []domain.Creation
	if err := r.db.WithContext(ctx).
		Where("publish = ?", true).
		Order("created_at DESC").
		Find(&creations).Error; err != nil {
		return nil, err
	}
	return creations, nil
}

// ToggleLike flips userID's membership in the likes set of a creation.
// The read-modify-write runs inside a transaction; on PostgreSQL the row is
// locked with FOR UPDATE so concurrent toggles cannot clobber each other.
// Returns gorm.ErrRecordNotFound if no row matches id.
func (r *CreationRepository) ToggleLike(ctx context.Context, id, userID string) (liked bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if tx.Dialector.Name() == "postgres" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var creation domain.Creation
		if err := query.First(&creation, "id = ?", id).Error; err != nil {
			return err
		}

		var updated domain.StringArray
		if creation.Likes.Contains(userID) {
			liked = false
			updated = make(domain.StringArray, 0, len(creation.Likes))
			for _, u := range creation.Likes {
				if u != userID {
					updated = append(updated, u)
				}
			}
		} else {
			liked = true
			updated = append(creation.Likes, userID)
		}

		return tx.Model(&domain.Creation{}).
			Where("id = ?", id).
			Update("likes", updated).Error
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}
