package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dorian/quill/internal/config"
	"github.com/dorian/quill/internal/domain"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   ":memory:",
		// a single connection keeps every query on the same in-memory database
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func TestCreationRepository_CreateAssignsIDAndTimestamp(t *testing.T) {
	repo := NewCreationRepository(openTestDB(t))
	ctx := context.Background()

	creation := &domain.Creation{
		UserID:  "user_1",
		Prompt:  "garden tips",
		Content: "Ten tips for a greener garden",
		Kind:    domain.KindBlogTitle,
	}
	if err := repo.Create(ctx, creation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if creation.ID == "" {
		t.Error("expected an assigned id")
	}
	if creation.CreatedAt.IsZero() {
		t.Error("expected an assigned timestamp")
	}
	if creation.Likes == nil {
		t.Error("expected likes to be initialized")
	}

	got, err := repo.GetByID(ctx, creation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != domain.KindBlogTitle {
		t.Errorf("expected kind %q, got %q", domain.KindBlogTitle, got.Kind)
	}
	if len(got.Likes) != 0 {
		t.Errorf("expected empty likes, got %v", got.Likes)
	}
}

func TestCreationRepository_ListByOwner(t *testing.T) {
	repo := NewCreationRepository(openTestDB(t))
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	rows := []domain.Creation{
		{UserID: "user_a", Prompt: "p1", Content: "c1", Kind: domain.KindArticle, CreatedAt: base},
		{UserID: "user_a", Prompt: "p2", Content: "c2", Kind: domain.KindBlogTitle, CreatedAt: base.Add(time.Minute)},
		{UserID: "user_b", Prompt: "p3", Content: "c3", Kind: domain.KindArticle, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range rows {
		if err := repo.Create(ctx, &rows[i]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := repo.ListByOwner(ctx, "user_a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 creations, got %d", len(got))
	}
	for _, creation := range got {
		if creation.UserID != "user_a" {
			t.Errorf("listing leaked another owner's row: %s", creation.UserID)
		}
	}
	// Newest first
	if got[0].Prompt != "p2" || got[1].Prompt != "p1" {
		t.Errorf("expected descending order by created_at, got %s then %s", got[0].Prompt, got[1].Prompt)
	}
}

func TestCreationRepository_ListPublished(t *testing.T) {
	repo := NewCreationRepository(openTestDB(t))
	ctx := context.Background()

	rows := []domain.Creation{
		{UserID: "user_a", Prompt: "p1", Content: "c1", Kind: domain.KindImage, Publish: true},
		{UserID: "user_b", Prompt: "p2", Content: "c2", Kind: domain.KindImage, Publish: false},
	}
	for i := range rows {
		if err := repo.Create(ctx, &rows[i]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := repo.ListPublished(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 published creation, got %d", len(got))
	}
	if !got[0].Publish {
		t.Error("listing returned an unpublished row")
	}
}

func TestCreationRepository_ToggleLike(t *testing.T) {
	repo := NewCreationRepository(openTestDB(t))
	ctx := context.Background()

	creation := &domain.Creation{UserID: "user_a", Prompt: "p", Content: "c", Kind: domain.KindImage}
	if err := repo.Create(ctx, creation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// First toggle adds the user
	liked, err := repo.ToggleLike(ctx, creation.ID, "user_v")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !liked {
		t.Error("expected liked=true on first toggle")
	}

	got, _ := repo.GetByID(ctx, creation.ID)
	if len(got.Likes) != 1 || got.Likes[0] != "user_v" {
		t.Errorf("expected likes=[user_v], got %v", got.Likes)
	}

	// Second toggle removes the user and restores the original set
	liked, err = repo.ToggleLike(ctx, creation.ID, "user_v")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if liked {
		t.Error("expected liked=false on second toggle")
	}

	got, _ = repo.GetByID(ctx, creation.ID)
	if len(got.Likes) != 0 {
		t.Errorf("expected empty likes after untoggle, got %v", got.Likes)
	}
}

func TestCreationRepository_ToggleLikeKeepsOtherMembers(t *testing.T) {
	repo := NewCreationRepository(openTestDB(t))
	ctx := context.Background()

	creation := &domain.Creation{
		UserID:  "user_a",
		Prompt:  "p",
		Content: "c",
		Kind:    domain.KindImage,
		Likes:   domain.StringArray{"user_x", "user_y"},
	}
	if err := repo.Create(ctx, creation); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := repo.ToggleLike(ctx, creation.ID, "user_x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := repo.GetByID(ctx, creation.ID)
	if len(got.Likes) != 1 || got.Likes[0] != "user_y" {
		t.Errorf("expected likes=[user_y], got %v", got.Likes)
	}
}

func TestCreationRepository_ToggleLikeNotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewCreationRepository(db)
	ctx := context.Background()

	_, err := repo.ToggleLike(ctx, "missing-id", "user_v")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}

	var count int64
	db.Model(&domain.Creation{}).Count(&count)
	if count != 0 {
		t.Errorf("expected store unchanged, found %d rows", count)
	}
}
