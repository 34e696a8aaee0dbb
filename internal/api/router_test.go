package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dorian/quill/internal/api/middleware"
	"github.com/dorian/quill/internal/domain"
	"github.com/dorian/quill/internal/identity"
	"github.com/dorian/quill/internal/media"
	"github.com/dorian/quill/internal/service"
	"gorm.io/gorm"
)

type stubResolver struct {
	caller *domain.Caller
	err    error
}

func (s *stubResolver) ResolveCaller(ctx context.Context, token string) (*domain.Caller, error) {
	if s.err != nil {
		return nil, s.err
	}
	c := *s.caller
	return &c, nil
}

type stubLedger struct {
	usage  int
	limit  int
	commit int
}

func (s *stubLedger) Usage(ctx context.Context, userID string) (int, error) { return s.usage, nil }
func (s *stubLedger) Commit(ctx context.Context, userID string) error {
	s.commit++
	return nil
}
func (s *stubLedger) Limit() int { return s.limit }

type stubCompleter struct {
	content string
	calls   int
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	s.calls++
	return s.content, nil
}

type stubImageGen struct{}

func (stubImageGen) Generate(ctx context.Context, prompt string) ([]byte, error) {
	return []byte("png"), nil
}

type stubMediaHost struct{}

func (stubMediaHost) Upload(ctx context.Context, filename string, data []byte, transformation string) (*media.UploadResult, error) {
	return &media.UploadResult{PublicID: "p", SecureURL: "https://media.test/p"}, nil
}
func (stubMediaHost) DeliveryURL(publicID, transformation string) string { return "https://media.test/" + publicID }

type stubCreationStore struct {
	creations []domain.Creation
	likeErr   error
}

func (s *stubCreationStore) Create(ctx context.Context, creation *domain.Creation) error {
	s.creations = append(s.creations, *creation)
	return nil
}
func (s *stubCreationStore) ListByOwner(ctx context.Context, userID string) ([]domain.Creation, error) {
	return s.creations, nil
}
func (s *stubCreationStore) ListPublished(ctx context.Context) ([]domain.Creation, error) {
	return s.creations, nil
}
func (s *stubCreationStore) ToggleLike(ctx context.Context, id, userID string) (bool, error) {
	if s.likeErr != nil {
		return false, s.likeErr
	}
	return true, nil
}

type stubImageStore struct{}

func (stubImageStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	return nil
}
func (stubImageStore) GetURL(key string) string { return "https://cdn.test/" + key }

type testEnv struct {
	router    http.Handler
	resolver  *stubResolver
	ledger    *stubLedger
	completer *stubCompleter
	store     *stubCreationStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		resolver:  &stubResolver{caller: &domain.Caller{UserID: "user_1", Plan: domain.PlanFree}},
		ledger:    &stubLedger{limit: 10},
		completer: &stubCompleter{content: "generated text"},
		store:     &stubCreationStore{},
	}

	svc := service.NewCreationService(
		env.completer,
		stubImageGen{},
		stubMediaHost{},
		env.store,
		env.ledger,
		stubImageStore{},
	)
	env.router = SetupRouter(svc, env.resolver, env.ledger, "test", middleware.CORSConfig{AllowAllOrigins: true})
	return env
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
	return w, resp
}

func TestRouter_MissingAuthorizationHeader(t *testing.T) {
	env := newTestEnv(t)

	w, resp := doJSON(t, env.router, http.MethodPost, "/api/ai/generate-article", "",
		map[string]interface{}{"prompt": "p", "length": 500})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp["success"] != false {
		t.Errorf("expected success=false, got %v", resp["success"])
	}
	if env.completer.calls != 0 {
		t.Error("handler must not run without a token")
	}
}

func TestRouter_InvalidToken(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.err = identity.ErrUnauthorized

	w, resp := doJSON(t, env.router, http.MethodPost, "/api/ai/generate-article", "bad",
		map[string]interface{}{"prompt": "p", "length": 500})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp["message"] != "Invalid token" {
		t.Errorf("unexpected message: %v", resp["message"])
	}
}

func TestRouter_GenerateArticle(t *testing.T) {
	env := newTestEnv(t)

	w, resp := doJSON(t, env.router, http.MethodPost, "/api/ai/generate-article", "tok",
		map[string]interface{}{"prompt": "Write about bees", "length": 800})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp["success"] != true || resp["content"] != "generated text" {
		t.Errorf("unexpected response: %v", resp)
	}
	if env.ledger.commit != 1 {
		t.Errorf("expected one quota commit, got %d", env.ledger.commit)
	}
	if len(env.store.creations) != 1 {
		t.Fatalf("expected one persisted creation, got %d", len(env.store.creations))
	}
	if env.store.creations[0].Kind != domain.KindArticle {
		t.Errorf("unexpected kind: %s", env.store.creations[0].Kind)
	}
}

func TestRouter_FreeLimitReached(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.usage = 10

	w, resp := doJSON(t, env.router, http.MethodPost, "/api/ai/generate-article", "tok",
		map[string]interface{}{"prompt": "p", "length": 500})

	if w.Code != http.StatusOK {
		t.Fatalf("limit responses still use 200, got %d", w.Code)
	}
	if resp["success"] != false {
		t.Errorf("expected success=false, got %v", resp["success"])
	}
	if resp["message"] != "You have reached your free limit. Upgrade to continue." {
		t.Errorf("unexpected message: %v", resp["message"])
	}
	if env.completer.calls != 0 {
		t.Error("provider must not be called past the limit")
	}
}

func TestRouter_PremiumFeatureDenied(t *testing.T) {
	env := newTestEnv(t)

	w, resp := doJSON(t, env.router, http.MethodPost, "/api/ai/generate-image", "tok",
		map[string]interface{}{"prompt": "a fox"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp["message"] != "This feature is only available to premium users." {
		t.Errorf("unexpected message: %v", resp["message"])
	}
}

func TestRouter_ToggleLikeNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.store.likeErr = gorm.ErrRecordNotFound

	_, resp := doJSON(t, env.router, http.MethodPost, "/api/user/toggle-like-creation", "tok",
		map[string]interface{}{"id": "missing"})

	if resp["success"] != false || resp["message"] != "Creation not found" {
		t.Errorf("unexpected response: %v", resp)
	}
}

func TestRouter_ToggleLike(t *testing.T) {
	env := newTestEnv(t)

	_, resp := doJSON(t, env.router, http.MethodPost, "/api/user/toggle-like-creation", "tok",
		map[string]interface{}{"id": "c1"})

	if resp["success"] != true || resp["message"] != "Creation liked" {
		t.Errorf("unexpected response: %v", resp)
	}
}

func TestRouter_GetUserCreations(t *testing.T) {
	env := newTestEnv(t)
	env.store.creations = []domain.Creation{{ID: "c1", UserID: "user_1", Kind: domain.KindArticle}}

	w, resp := doJSON(t, env.router, http.MethodGet, "/api/user/get-user-creations", "tok", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	creations, ok := resp["creations"].([]interface{})
	if !ok || len(creations) != 1 {
		t.Errorf("unexpected creations payload: %v", resp["creations"])
	}
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
