package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dorian/quill/internal/domain"
	"github.com/dorian/quill/internal/logger"
	"github.com/dorian/quill/internal/media"
	"github.com/dorian/quill/internal/pdftext"
	"github.com/dorian/quill/internal/prompts"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxUploadBytes caps uploaded files at 5MB.
const MaxUploadBytes = 5 * 1024 * 1024

// TextCompleter produces a completion for a prompt.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ImageGenerator synthesizes an image for a prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// MediaHost uploads images with optional transformations and builds
// on-the-fly delivery URLs.
type MediaHost interface {
	Upload(ctx context.Context, filename string, data []byte, transformation string) (*media.UploadResult, error)
	DeliveryURL(publicID, transformation string) string
}

// ImageStore persists generated image bytes and serves them by public URL.
type ImageStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	GetURL(key string) string
}

// CreationStore persists creation rows.
type CreationStore interface {
	Create(ctx context.Context, creation *domain.Creation) error
	ListByOwner(ctx context.Context, userID string) ([]domain.Creation, error)
	ListPublished(ctx context.Context) ([]domain.Creation, error)
	ToggleLike(ctx context.Context, id, userID string) (bool, error)
}

// QuotaLedger tracks free-tier consumption.
type QuotaLedger interface {
	Usage(ctx context.Context, userID string) (int, error)
	Commit(ctx context.Context, userID string) error
	Limit() int
}

// CreationService orchestrates quota gating, provider calls and persistence
// for every generation endpoint.
type CreationService struct {
	llm       TextCompleter
	images    ImageGenerator
	mediaHost MediaHost
	store     CreationStore
	ledger    QuotaLedger
	imgStore  ImageStore
}

// NewCreationService creates a new creation service.
func NewCreationService(
	llm TextCompleter,
	images ImageGenerator,
	mediaHost MediaHost,
	store CreationStore,
	ledger QuotaLedger,
	imgStore ImageStore,
) *CreationService {
	return &CreationService{
		llm:       llm,
		images:    images,
		mediaHost: mediaHost,
		store:     store,
		ledger:    ledger,
		imgStore:  imgStore,
	}
}

// checkQuota is the advisory free-tier gate for quota-limited kinds.
// Premium callers are never counted.
func (s *CreationService) checkQuota(caller domain.Caller) error {
	if caller.Plan.IsPremium() {
		return nil
	}
	if caller.FreeUsage >= s.ledger.Limit() {
		return ErrFreeLimitReached
	}
	return nil
}

// commitQuota records one consumed generation for free-plan callers after
// the gated operation succeeded. The increment itself is a guarded update,
// so a concurrent commit that loses the race surfaces here instead of
// silently overshooting the cap.
func (s *CreationService) commitQuota(ctx context.Context, caller domain.Caller) error {
	if caller.Plan.IsPremium() {
		return nil
	}
	return s.ledger.Commit(ctx, caller.UserID)
}

// persist inserts the creation row for a successful generation.
func (s *CreationService) persist(ctx context.Context, caller domain.Caller, prompt, content string, kind domain.CreationKind, publish bool) error {
	creation := &domain.Creation{
		UserID:  caller.UserID,
		Prompt:  prompt,
		Content: content,
		Kind:    kind,
		Publish: publish,
	}
	if err := s.store.Create(ctx, creation); err != nil {
		return fmt.Errorf("failed to save creation: %w", err)
	}
	logger.CtxInfo(ctx, "Creation saved: id=%s, kind=%s, user=%s", creation.ID, kind, caller.UserID)
	return nil
}

// GenerateArticle produces an article of the requested length.
// Quota-gated: free callers are denied at the cap and charged one use on success.
func (s *CreationService) GenerateArticle(ctx context.Context, caller domain.Caller, prompt string, length int) (string, error) {
	if err := s.checkQuota(caller); err != nil {
		return "", err
	}

	content, err := s.llm.Complete(ctx, prompt, length)
	if err != nil {
		return "", err
	}

	if err := s.persist(ctx, caller, prompt, content, domain.KindArticle, false); err != nil {
		return "", err
	}
	if err := s.commitQuota(ctx, caller); err != nil {
		return "", err
	}
	return content, nil
}

// GenerateBlogTitle produces blog title suggestions. Quota-gated.
func (s *CreationService) GenerateBlogTitle(ctx context.Context, caller domain.Caller, prompt string) (string, error) {
	if err := s.checkQuota(caller); err != nil {
		return "", err
	}

	content, err := s.llm.Complete(ctx, prompt, 100)
	if err != nil {
		return "", err
	}

	if err := s.persist(ctx, caller, prompt, content, domain.KindBlogTitle, false); err != nil {
		return "", err
	}
	if err := s.commitQuota(ctx, caller); err != nil {
		return "", err
	}
	return content, nil
}

// GenerateImage synthesizes an image, stores it in object storage and
// returns its public URL. Premium only; never counted against the quota.
func (s *CreationService) GenerateImage(ctx context.Context, caller domain.Caller, prompt string, publish bool) (string, error) {
	if !caller.Plan.IsPremium() {
		return "", ErrPremiumRequired
	}

	data, err := s.images.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("creations/%s.png", uuid.New().String())
	if err := s.imgStore.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "image/png"); err != nil {
		return "", fmt.Errorf("failed to store generated image: %w", err)
	}
	url := s.imgStore.GetURL(key)

	if err := s.persist(ctx, caller, prompt, url, domain.KindImage, publish); err != nil {
		return "", err
	}
	return url, nil
}

// RemoveBackground uploads the caller's image with a background-removal
// transformation applied server-side. Premium only.
func (s *CreationService) RemoveBackground(ctx context.Context, caller domain.Caller, filename string, data []byte) (string, error) {
	if !caller.Plan.IsPremium() {
		return "", ErrPremiumRequired
	}
	if int64(len(data)) > MaxUploadBytes {
		return "", ErrFileTooLarge
	}
	if _, err := media.SniffImage(data); err != nil {
		return "", err
	}

	result, err := s.mediaHost.Upload(ctx, filename, data, media.EffectBackgroundRemoval)
	if err != nil {
		return "", err
	}

	if err := s.persist(ctx, caller, prompts.RemoveBackgroundPrompt, result.SecureURL, domain.KindImage, false); err != nil {
		return "", err
	}
	return result.SecureURL, nil
}

// RemoveObject uploads the caller's image and returns a delivery URL with a
// generative-removal effect for the named object. The derived image is
// rendered by the media host on the fly. Premium only.
func (s *CreationService) RemoveObject(ctx context.Context, caller domain.Caller, filename string, data []byte, object string) (string, error) {
	if !caller.Plan.IsPremium() {
		return "", ErrPremiumRequired
	}
	if int64(len(data)) > MaxUploadBytes {
		return "", ErrFileTooLarge
	}
	if _, err := media.SniffImage(data); err != nil {
		return "", err
	}

	result, err := s.mediaHost.Upload(ctx, filename, data, "")
	if err != nil {
		return "", err
	}
	url := s.mediaHost.DeliveryURL(result.PublicID, media.EffectGenRemove(object))

	if err := s.persist(ctx, caller, prompts.RemoveObjectPrompt(object), url, domain.KindImage, false); err != nil {
		return "", err
	}
	return url, nil
}

// ReviewResume extracts the text of an uploaded PDF resume and asks the
// completion provider for structured feedback. Premium only.
func (s *CreationService) ReviewResume(ctx context.Context, caller domain.Caller, data []byte) (string, error) {
	if !caller.Plan.IsPremium() {
		return "", ErrPremiumRequired
	}
	if int64(len(data)) > MaxUploadBytes {
		return "", ErrFileTooLarge
	}

	text, err := pdftext.Extract(data)
	if err != nil {
		return "", err
	}

	content, err := s.llm.Complete(ctx, prompts.ResumeReviewInstruction+text, 1000)
	if err != nil {
		return "", err
	}

	if err := s.persist(ctx, caller, prompts.ResumeReviewPrompt, content, domain.KindResumeReview, false); err != nil {
		return "", err
	}
	return content, nil
}

// ListUserCreations returns the caller's own creations, newest first.
func (s *CreationService) ListUserCreations(ctx context.Context, userID string) ([]domain.Creation, error) {
	return s.store.ListByOwner(ctx, userID)
}

// ListPublished returns all published creations, newest first.
func (s *CreationService) ListPublished(ctx context.Context) ([]domain.Creation, error) {
	return s.store.ListPublished(ctx)
}

// ToggleLike flips the caller's membership in a creation's like set.
func (s *CreationService) ToggleLike(ctx context.Context, userID, creationID string) (liked bool, err error) {
	liked, err = s.store.ToggleLike(ctx, creationID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrCreationNotFound
	}
	if err != nil {
		return false, err
	}
	return liked, nil
}
