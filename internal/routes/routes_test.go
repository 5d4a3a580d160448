package routes_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/templui/storyloom/internal/app"
	"github.com/templui/storyloom/internal/config"
	"github.com/templui/storyloom/internal/genai"
	"github.com/templui/storyloom/internal/kvstore"
	"github.com/templui/storyloom/internal/mocks"
	"github.com/templui/storyloom/internal/model"
	"github.com/templui/storyloom/internal/repository"
	"github.com/templui/storyloom/internal/routes"
	"github.com/templui/storyloom/internal/service"
	"github.com/templui/storyloom/internal/studio"
	"github.com/templui/storyloom/internal/testutil"
)

const password = "correct horse battery"

type testServer struct {
	handler   http.Handler
	completer *mocks.Completer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		AppName:   "Storyloom",
		AppEnv:    "test",
		AppURL:    "http://localhost",
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}
	conn := testutil.NewDB(t)
	store := kvstore.NewMemory()
	completer := &mocks.Completer{}

	email := service.NewEmailService("", "noreply@example.com", cfg.AppURL, cfg.AppName, true)
	storyRepository := repository.NewStoryRepository(conn)
	assetRepository := repository.NewAssetRepository(conn)
	storyService := service.NewStoryService(storyRepository, assetRepository)
	assetService := service.NewAssetService(assetRepository)
	orphanService := service.NewOrphanService(repository.NewOrphanRepository(conn), storyRepository, assetRepository)
	ledgerService := service.NewLedgerService(store, email)

	catalogService, err := service.NewCatalogService(fstest.MapFS{
		"stories/1-odyssey.md": {Data: []byte("---\nid: \"1\"\ntitle: The Digital Odyssey\nauthor: Alex Chen\ngenre: Sci-Fi\nlikes: 156\n---\n\nIn the year *2045*.\n")},
	}, ledgerService)
	require.NoError(t, err)

	a := &app.App{
		Cfg:            cfg,
		DB:             conn,
		Store:          store,
		AuthService:    service.NewAuthService(repository.NewUserRepository(conn), email, cfg.JWTSecret, cfg.JWTExpiry, false),
		EmailService:   email,
		StoryService:   storyService,
		AssetService:   assetService,
		OrphanService:  orphanService,
		FileService:    service.NewFileService(repository.NewFileRepository(conn), storyService, nil),
		LedgerService:  ledgerService,
		CatalogService: catalogService,
		WriterService:  service.NewWriterService(completer),
		Studio:         studio.NewManager(storyService, assetService, orphanService, studio.Options{}),
	}

	return &testServer{handler: routes.SetupRoutes(a), completer: completer}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type sseEvent struct {
	name string
	data string
}

func readEvents(t *testing.T, body string) []sseEvent {
	t.Helper()

	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if current.name != "" {
				events = append(events, current)
			}
			current = sseEvent{}
		}
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/app/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := s.register(t, "ada@example.com")

	rec = s.do(t, http.MethodGet, "/app/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "ada@example.com", me["email"])
	assert.NotContains(t, me, "password_hash")

	rec = s.do(t, http.MethodPost, "/auth/register", "", map[string]string{"email": "ada@example.com", "password": password})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ada@example.com", "password": "wrong password!!"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": "ada@example.com", "password": password})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Result().Cookies())

	rec = s.do(t, http.MethodGet, "/app/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidationFields(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{"email": "ada@example.com", "password": "short"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Contains(t, body["fields"], "password")
}

func TestStudioGenerateJSON(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ada@example.com")

	rec := s.do(t, http.MethodPost, "/app/studio/generate/image", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty draft")

	rec = s.do(t, http.MethodPut, "/app/studio/story", token, map[string]string{"title": "T", "author": "A", "content": "Once upon a time."})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "story_pending", decode[map[string]any](t, rec)["state"])

	rec = s.do(t, http.MethodPost, "/app/studio/generate/image", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	asset := decode[model.GeneratedAsset](t, rec)
	assert.Equal(t, "T - Image", asset.Title)

	rec = s.do(t, http.MethodPost, "/app/studio/generate/image", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPut, "/app/studio/story", token, map[string]string{"title": "Other", "author": "A", "content": "c"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/app/studio/generate/hologram", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/app/stories", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stories := decode[[]model.Story](t, rec)
	require.Len(t, stories, 1)
	assert.Equal(t, asset.StoryID, stories[0].ID)

	rec = s.do(t, http.MethodGet, "/app/stories/"+asset.StoryID+"/assets", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.GeneratedAsset](t, rec), 1)

	other := s.register(t, "bob@example.com")
	rec = s.do(t, http.MethodGet, "/app/stories/"+asset.StoryID+"/assets", other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudioGenerateStreamsProgress(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ada@example.com")

	rec := s.do(t, http.MethodPut, "/app/studio/story", token, map[string]string{"title": "T", "author": "A", "content": "c"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/app/studio/generate/audiobook", token, nil, "Accept", "text/event-stream")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := readEvents(t, rec.Body.String())
	require.Len(t, events, 7)

	var progress []int
	for _, e := range events[:6] {
		require.Equal(t, "progress", e.name)
		var p struct {
			Progress int `json:"progress"`
		}
		require.NoError(t, json.Unmarshal([]byte(e.data), &p))
		progress = append(progress, p.Progress)
	}
	assert.Equal(t, []int{20, 40, 60, 80, 95, 100}, progress)

	require.Equal(t, "asset", events[6].name)
	var asset model.GeneratedAsset
	require.NoError(t, json.Unmarshal([]byte(events[6].data), &asset))
	assert.Equal(t, model.AssetTypeAudiobook, asset.AssetType)

	// Already generated is rejected before any event is sent
	rec = s.do(t, http.MethodPost, "/app/studio/generate/audiobook", token, nil, "Accept", "text/event-stream")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStudioSaveToLibraryAndReset(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ada@example.com")

	rec := s.do(t, http.MethodPost, "/app/studio/library", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "nothing generated yet")

	s.do(t, http.MethodPut, "/app/studio/story", token, map[string]string{"title": "Moon", "author": "A", "content": "c"})
	for _, assetType := range []string{"image", "comic"} {
		rec = s.do(t, http.MethodPost, "/app/studio/generate/"+assetType, token, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/app/studio/library", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/app/library?type=comic", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	library := decode[model.Library](t, rec)
	assert.Equal(t, 2, library.Total)
	require.Len(t, library.Assets, 1)
	assert.Equal(t, "Moon", library.Assets[0].ProjectTitle)

	rec = s.do(t, http.MethodPost, "/app/studio/reset", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[map[string]any](t, rec)
	assert.Equal(t, "idle", snap["state"])
	assert.Empty(t, snap["assets"])
}

func TestWriterEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ada@example.com")

	s.completer.On("Complete", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "a lighthouse")
	}), mock.Anything).Return("Once there was a lighthouse.", nil).Once()
	s.completer.On("Complete", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "i has")
	}), mock.Anything).Return("", &genai.HTTPError{StatusCode: http.StatusTooManyRequests, Message: "quota"}).Once()

	rec := s.do(t, http.MethodPost, "/app/writer/story", token, map[string]string{"prompt": "a lighthouse"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Once there was a lighthouse.", decode[map[string]string](t, rec)["text"])

	rec = s.do(t, http.MethodPost, "/app/writer/grammar", token, map[string]string{"text": "i has"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "quota")

	rec = s.do(t, http.MethodPost, "/app/writer/plot-twists", token, map[string]string{"story": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/app/writer/story", "", map[string]string{"prompt": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.completer.AssertExpectations(t)
}

func TestLedgerEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ada@example.com")

	rec := s.do(t, http.MethodPost, "/app/likes/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["liked"])

	rec = s.do(t, http.MethodGet, "/api/stories/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	story := decode[model.CatalogStory](t, rec)
	assert.True(t, story.IsLiked)
	assert.Equal(t, 157, story.Likes)
	assert.Contains(t, story.HTMLContent, "<em>2045</em>")

	rec = s.do(t, http.MethodPost, "/app/likes/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["liked"])

	draft := model.StoryFields{Title: "Draft", Content: "words"}
	for range 2 {
		rec = s.do(t, http.MethodPost, "/app/drafts", token, draft)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec = s.do(t, http.MethodGet, "/app/drafts", token, nil)
	assert.Len(t, decode[[]model.Draft](t, rec), 2)

	rec = s.do(t, http.MethodPost, "/app/published", token, model.StoryFields{Title: "Mine", Content: "c", Genre: "Nope", Author: "Ada"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/app/published", token, model.StoryFields{Title: "Mine", Content: "one two three", Genre: "Drama", Author: "Ada"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	published := decode[model.PublishedStory](t, rec)

	rec = s.do(t, http.MethodGet, "/api/stories?genre=Drama", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	catalog := decode[struct {
		Genres  []string             `json:"genres"`
		Stories []model.CatalogStory `json:"stories"`
	}](t, rec)
	require.Len(t, catalog.Stories, 1)
	assert.Equal(t, published.ID, catalog.Stories[0].ID)
	assert.Equal(t, "All", catalog.Genres[0])

	rec = s.do(t, http.MethodGet, "/api/stories?genre=Drama", "", nil)
	assert.Empty(t, decode[struct {
		Stories []model.CatalogStory `json:"stories"`
	}](t, rec).Stories, "guests only see samples")
}

func TestCoverUploadWithoutStorage(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ada@example.com")

	rec := s.do(t, http.MethodGet, "/app/stories/missing/cover", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCSRFOnCookieSessions(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ada@example.com")

	req := httptest.NewRequest(http.MethodPost, "/app/studio/reset", nil)
	req.AddCookie(&http.Cookie{Name: service.AuthCookieName, Value: token})
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	csrf := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, csrf)

	req = httptest.NewRequest(http.MethodPost, "/app/studio/reset", nil)
	req.AddCookie(&http.Cookie{Name: service.AuthCookieName, Value: token})
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: csrf})
	req.Header.Set("X-CSRF-Token", csrf)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	s.do(t, http.MethodGet, "/api/stories", "", nil)

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storyloom_http_request_duration_seconds_count{method="GET",route="GET /api/stories"`)

	rec = s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCSRFRejectionIsMeasured(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "ada@example.com")

	req := httptest.NewRequest(http.MethodPost, "/app/drafts", nil)
	req.AddCookie(&http.Cookie{Name: service.AuthCookieName, Value: token})
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storyloom_http_request_duration_seconds_count{method="POST",route="unknown",status="403"}`)
}
