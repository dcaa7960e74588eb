package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/folioview/folioview/internal/config"
	"github.com/folioview/folioview/internal/recents/service"
	"github.com/folioview/folioview/internal/viewstate"
)

func newSessionsRouter(t *testing.T) (*gin.Engine, string, *viewstate.Service) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	viewstate.SetRevocationClient(client)
	t.Cleanup(func() { viewstate.SetRevocationClient(nil) })

	cfg := &config.Config{}
	cfg.Sessions.JWTSecret = "handler-test-secret-32-bytes-xxxxxx"
	cfg.Sessions.TTL = 24 * time.Hour

	recentsSvc := service.NewMemoryService(0)
	require.NoError(t, recentsSvc.Initialize(context.Background()))
	require.NoError(t, recentsSvc.Save(context.Background(), "report.pdf", []byte("%PDF")))
	recs, err := recentsSvc.ListRecent(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	viewSvc := viewstate.NewService(viewstate.NewRedisRepository(client, ""))
	h := NewSessionsHandler(cfg, viewSvc, recentsSvc)

	r := gin.New()
	h.Register(r.Group("/api/v1"))
	return r, recs[0].ID, viewSvc
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func openSession(t *testing.T, r *gin.Engine, docID string) (sessionID, resumeToken string) {
	t.Helper()
	w := postJSON(r, "/api/v1/sessions", `{"documentId":"`+docID+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var opened map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opened))
	sessionID, _ = opened["sessionId"].(string)
	resumeToken, _ = opened["resumeToken"].(string)
	require.NotEmpty(t, sessionID)
	require.NotEmpty(t, resumeToken)
	return sessionID, resumeToken
}

func patchPage(r *gin.Engine, sessionID, bearer, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/sessions/"+sessionID, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestSessionOpenResumeAdvanceClose(t *testing.T) {
	r, docID, _ := newSessionsRouter(t)

	sessionID, resumeToken := openSession(t, r, docID)

	// advance to page 5
	w := patchPage(r, sessionID, resumeToken, `{"page":5}`)
	require.Equal(t, http.StatusOK, w.Code)

	// resume sees the recorded page
	w = postJSON(r, "/api/v1/sessions/resume", `{"resumeToken":"`+resumeToken+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resumed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resumed))
	require.Equal(t, docID, resumed["documentId"])
	require.EqualValues(t, 5, resumed["page"])

	// close revokes the resume token
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+sessionID, nil)
	req.Header.Set("Authorization", "Bearer "+resumeToken)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(r, "/api/v1/sessions/resume", `{"resumeToken":"`+resumeToken+`"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionOpenUnknownDocument(t *testing.T) {
	r, _, _ := newSessionsRouter(t)

	w := postJSON(r, "/api/v1/sessions", `{"documentId":"missing"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionResumeRejectsGarbageToken(t *testing.T) {
	r, _, _ := newSessionsRouter(t)

	w := postJSON(r, "/api/v1/sessions/resume", `{"resumeToken":"not.a.jwt"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionMutationsRequireResumeToken(t *testing.T) {
	r, docID, _ := newSessionsRouter(t)

	sessionID, _ := openSession(t, r, docID)

	// no token at all
	w := patchPage(r, sessionID, "", `{"page":1}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// a valid token for a different session
	_, otherToken := openSession(t, r, docID)
	w = patchPage(r, sessionID, otherToken, `{"page":1}`)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestSessionAdvanceMissingSessionIs404(t *testing.T) {
	r, docID, viewSvc := newSessionsRouter(t)

	sessionID, resumeToken := openSession(t, r, docID)

	// session vanishes server-side while the token stays valid
	require.NoError(t, viewSvc.Close(context.Background(), sessionID))

	w := patchPage(r, sessionID, resumeToken, `{"page":1}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}
