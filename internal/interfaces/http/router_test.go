package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/auth"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/config"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/migration"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/persistence/models"
	"github.com/fachwerk-hq/fachwerk/internal/infrastructure/repository"
	sharedConfig "github.com/fachwerk-hq/fachwerk/internal/shared/config"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

type testServer struct {
	router   *Router
	verifier *auth.SessionVerifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(migration.AutoMigrateModels()...))

	cfg := &config.Config{
		Server: sharedConfig.ServerConfig{BaseURL: "http://localhost:8080"},
		Auth:   sharedConfig.AuthConfig{JWTSecret: "router-test-secret", DevTokenTTL: time.Hour},
		Marketplace: sharedConfig.MarketplaceConfig{
			RatingMin:            0,
			RatingMax:            10,
			ProblemNoteMinLength: 10,
		},
		Relay: sharedConfig.RelayConfig{BatchSize: 50},
		Retry: sharedConfig.RetryConfig{Attempts: 1, BaseDelay: time.Millisecond},
	}

	router, err := NewRouter(gdb, nil, cfg, logger.NewNopLogger())
	require.NoError(t, err)
	router.SetupRoutes()

	members := repository.NewPartnerMemberRepository(gdb)
	require.NoError(t, members.AddMember(context.Background(), "partner-1", "user-owner", models.PartnerMemberRoleOwner))

	return &testServer{router: router, verifier: auth.NewSessionVerifier(cfg.Auth)}
}

func (s *testServer) token(t *testing.T, userID string, admin bool) string {
	t.Helper()
	tok, _, err := s.verifier.Issue(userID, userID+"@example.com", admin)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, apiEnvelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.GetEngine().ServeHTTP(w, req)

	var env apiEnvelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.router.GetEngine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fachwerk_http_requests_total")
}

func TestRouter_ServesSwaggerDoc(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	w := httptest.NewRecorder()
	s.router.GetEngine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/applications/{id}/decision")
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unauthenticated", env.Error.Reason)
}

func TestRouter_MeResolvesPartnerOwner(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/me", s.token(t, "user-owner", false), nil)
	require.Equal(t, http.StatusOK, code)

	var me struct {
		UserID          string   `json:"user_id"`
		Kind            string   `json:"kind"`
		OwnedPartnerIDs []string `json:"owned_partner_ids"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "user-owner", me.UserID)
	assert.Equal(t, "partner_owner", me.Kind)
	assert.Equal(t, []string{"partner-1"}, me.OwnedPartnerIDs)
}

func TestRouter_AdminRoutesForbiddenForConsumer(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/admin/requests/req-1/resolve-problem", s.token(t, "user-consumer", false), nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRouter_ConsumerCannotSubmitApplication(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodPost, "/applications", s.token(t, "user-consumer", false), map[string]string{
		"request_id": "req-1",
		"partner_id": "partner-1",
	})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRouter_RequestApplicationAcceptFlow(t *testing.T) {
	s := newTestServer(t)
	consumer := s.token(t, "user-consumer", false)
	owner := s.token(t, "user-owner", false)

	code, env := s.do(t, http.MethodPost, "/requests", consumer, map[string]any{
		"summary":  "Leaking tap",
		"category": "plumbing",
		"location": "Berlin",
	})
	require.Equal(t, http.StatusCreated, code)
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ID)

	code, env = s.do(t, http.MethodPost, "/applications", owner, map[string]string{
		"request_id":   created.ID,
		"partner_id":   "partner-1",
		"message_text": "We can come **tomorrow**.",
	})
	require.Equal(t, http.StatusCreated, code)
	var submitted struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &submitted))
	require.NotEmpty(t, submitted.ID)

	code, env = s.do(t, http.MethodPost, "/applications", owner, map[string]string{
		"request_id": created.ID,
		"partner_id": "partner-1",
	})
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "already_applied", env.Error.Reason)

	code, env = s.do(t, http.MethodPost, "/applications/"+submitted.ID+"/decision", consumer, map[string]string{
		"action":     "accept",
		"request_id": created.ID,
	})
	require.Equal(t, http.StatusOK, code)
	var decided struct {
		Application struct {
			Status string `json:"status"`
		} `json:"application"`
		ConversationID string `json:"conversation_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &decided))
	assert.Equal(t, "accepted", decided.Application.Status)
	assert.NotEmpty(t, decided.ConversationID)

	code, env = s.do(t, http.MethodGet, "/chat/"+created.ID+"/messages", consumer, nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.NotEmpty(t, page.Items)
}

func TestRouter_StreamNotMountedWithoutRedis(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodGet, "/chat/req-1/stream", s.token(t, "user-consumer", false), nil)
	assert.Equal(t, http.StatusNotFound, code)
}
