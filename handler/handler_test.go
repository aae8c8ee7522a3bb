package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"noteshare/dto"
	"noteshare/handler"
	"noteshare/services"
	"noteshare/test/testutils"
	"noteshare/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app    *testutils.App
	router *gin.Engine
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	testutils.SetupTestEnvironment()
	app := testutils.NewApp(nil)
	router := handler.SetupRouter(&handler.Services{
		Users:     app.UserService,
		Notes:     app.NotesService,
		Favorites: app.FavoritesService,
		Comments:  app.CommentsService,
		Storage:   app.Storage,
		Health: map[string]handler.HealthCheck{
			"database": func(context.Context) error { return nil },
		},
		MaxBodySize: 4 << 20,
	})
	return &testServer{app: app, router: router}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) form(t *testing.T, method, path, token string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) multipart(t *testing.T, method, path, token string, values map[string]string, field, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(t *testing.T, username, password string) {
	t.Helper()
	w := s.form(t, http.MethodPost, "/api/register", "", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/login", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func msgOf(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[utils.Response](t, w).Msg
}

func TestNoteLifecycle(t *testing.T) {
	s := newServer(t)
	s.register(t, "alice", "pw1")
	token := s.login(t, "alice", "pw1")

	w := s.do(t, http.MethodPost, "/api/notes", token, gin.H{"title": "T1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	noteID := decode[map[string]string](t, w)["id"]
	require.NotEmpty(t, noteID)

	notes := decode[[]dto.NoteResponse](t, s.do(t, http.MethodGet, "/api/notes", token, nil))
	require.Len(t, notes, 1)
	assert.Equal(t, "T1", notes[0].Title)
	assert.Equal(t, "alice", notes[0].Username)
	assert.Equal(t, 0, notes[0].FavoriteCount)
	assert.Equal(t, 0, notes[0].CommentCount)

	w = s.do(t, http.MethodPost, "/api/favorites/"+noteID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["favorited"])

	notes = decode[[]dto.NoteResponse](t, s.do(t, http.MethodGet, "/api/notes", token, nil))
	assert.Equal(t, 1, notes[0].FavoriteCount)

	w = s.do(t, http.MethodPost, "/api/comments/"+noteID, token, gin.H{"content": "hi"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decode[dto.CommentResponse](t, w)
	assert.Equal(t, "hi", comment.Content)
	assert.Equal(t, "alice", comment.Username)

	notes = decode[[]dto.NoteResponse](t, s.do(t, http.MethodGet, "/api/notes", token, nil))
	assert.Equal(t, 1, notes[0].CommentCount)

	favorites := decode[[]dto.NoteResponse](t, s.do(t, http.MethodGet, "/api/favorites", token, nil))
	require.Len(t, favorites, 1)

	w = s.do(t, http.MethodDelete, "/api/notes/"+noteID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/notes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
	assert.Equal(t, 0, s.app.Comments.Count())

	w = s.do(t, http.MethodGet, "/api/comments/"+noteID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginErrorsAreIdentical(t *testing.T) {
	s := newServer(t)
	s.register(t, "alice", "pw1")

	unknown := s.do(t, http.MethodPost, "/api/login", "", gin.H{"username": "nobody", "password": "pw1"})
	wrong := s.do(t, http.MethodPost, "/api/login", "", gin.H{"username": "alice", "password": "nope"})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())

	missing := s.do(t, http.MethodPost, "/api/login", "", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestRegistration(t *testing.T) {
	s := newServer(t)

	w := s.form(t, http.MethodPost, "/api/register", "", url.Values{
		"username": {"alice"}, "password": {"pw1"}, "email": {"alice@example.com"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode[struct {
		Msg  string           `json:"msg"`
		User dto.UserResponse `json:"user"`
	}](t, w)
	assert.Equal(t, "alice", body.User.Username)
	require.NotNil(t, body.User.Email)
	assert.NotContains(t, w.Body.String(), "password")

	w = s.form(t, http.MethodPost, "/api/register", "", url.Values{"username": {"alice"}, "password": {"other"}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username already exists", msgOf(t, w))

	w = s.form(t, http.MethodPost, "/api/register", "", url.Values{"username": {"  "}, "password": {"pw"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.multipart(t, http.MethodPost, "/api/register", "", map[string]string{"username": "bob", "password": "pw"},
		"profile_image", "me.png", testutils.PNG())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bob := decode[struct {
		User dto.UserResponse `json:"user"`
	}](t, w).User
	require.NotNil(t, bob.ProfileImageURL)

	img := s.do(t, http.MethodGet, *bob.ProfileImageURL, "", nil)
	require.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "image/png", img.Header().Get("Content-Type"))
	assert.Equal(t, testutils.PNG(), img.Body.Bytes())

	w = s.multipart(t, http.MethodPost, "/api/register", "", map[string]string{"username": "carol", "password": "pw"},
		"profile_image", "evil.png", []byte("#!/bin/sh"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOwnershipLooksLikeAbsence(t *testing.T) {
	s := newServer(t)
	s.register(t, "alice", "pw1")
	s.register(t, "bob", "pw2")
	alice := s.login(t, "alice", "pw1")
	bob := s.login(t, "bob", "pw2")

	w := s.do(t, http.MethodPost, "/api/notes", alice, gin.H{"title": "private"})
	noteID := decode[map[string]string](t, w)["id"]

	update := s.do(t, http.MethodPut, "/api/notes/"+noteID, bob, gin.H{"title": "hacked"})
	missing := s.do(t, http.MethodPut, "/api/notes/does-not-exist", bob, gin.H{"title": "hacked"})
	assert.Equal(t, http.StatusNotFound, update.Code)
	assert.Equal(t, missing.Body.String(), update.Body.String())

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/notes/"+noteID, bob, nil).Code)

	w = s.do(t, http.MethodPut, "/api/notes/"+noteID, alice, gin.H{"content": "updated"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[struct {
		Note map[string]any `json:"note"`
	}](t, w)
	assert.Equal(t, "private", updated.Note["title"])
	assert.Equal(t, "updated", updated.Note["content"])

	all := decode[[]dto.NoteResponse](t, s.do(t, http.MethodGet, "/api/notes/all", bob, nil))
	require.Len(t, all, 1)
	assert.Equal(t, "alice", all[0].Username)
}

func TestSearchRoutes(t *testing.T) {
	s := newServer(t)
	s.register(t, "alice", "pw1")
	s.register(t, "bob", "pw2")
	alice := s.login(t, "alice", "pw1")
	bob := s.login(t, "bob", "pw2")

	s.do(t, http.MethodPost, "/api/notes", alice, gin.H{"title": "Trip", "content": "Pack the TENT"})
	s.do(t, http.MethodPost, "/api/notes", bob, gin.H{"title": "tent shopping"})

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/notes/search?q=", alice, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/notes/all/search", alice, nil).Code)

	mine := decode[[]dto.NoteResponse](t, s.do(t, http.MethodGet, "/api/notes/search?q=tent", alice, nil))
	require.Len(t, mine, 1)
	assert.Equal(t, "Trip", mine[0].Title)

	everyone := decode[[]dto.NoteResponse](t, s.do(t, http.MethodGet, "/api/notes/all/search?q=Tent", alice, nil))
	assert.Len(t, everyone, 2)

	w := s.do(t, http.MethodGet, "/api/notes/search?q=nothing", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestCommentPermissions(t *testing.T) {
	s := newServer(t)
	s.register(t, "alice", "pw1")
	s.register(t, "bob", "pw2")
	alice := s.login(t, "alice", "pw1")
	bob := s.login(t, "bob", "pw2")

	noteID := decode[map[string]string](t, s.do(t, http.MethodPost, "/api/notes", alice, gin.H{"title": "n"}))["id"]
	comment := decode[dto.CommentResponse](t, s.do(t, http.MethodPost, "/api/comments/"+noteID, bob, gin.H{"content": "hello"}))

	w := s.do(t, http.MethodDelete, "/api/comments/"+comment.ID, alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/comments/"+noteID, bob, gin.H{"content": strings.Repeat("x", 501)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/comments/missing", bob, gin.H{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	comments := decode[[]dto.CommentResponse](t, s.do(t, http.MethodGet, "/api/comments/"+noteID, alice, nil))
	require.Len(t, comments, 1)
	assert.Equal(t, "bob", comments[0].Username)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/comments/"+comment.ID, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/comments/"+comment.ID, bob, nil).Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newServer(t)
	for _, path := range []string{"/api/notes", "/api/favorites", "/api/profile", "/api/comments/x", "/api/sessions"} {
		w := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestProfileAndSessions(t *testing.T) {
	s := newServer(t)
	s.form(t, http.MethodPost, "/api/register", "", url.Values{
		"username": {"alice"}, "password": {"pw1"}, "email": {"alice@example.com"},
	})
	s.register(t, "bob", "pw2")
	token := s.login(t, "alice", "pw1")

	w := s.do(t, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode[map[string]dto.UserResponse](t, w)["user"].Username)

	w = s.form(t, http.MethodPut, "/api/profile", token, url.Values{"email": {""}, "username": {"alice2"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode[struct {
		User dto.UserResponse `json:"user"`
	}](t, w).User
	assert.Equal(t, "alice2", user.Username)
	assert.Nil(t, user.Email)

	w = s.form(t, http.MethodPut, "/api/profile", token, url.Values{"username": {"bob"}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/sessions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sessions := decode[map[string][]dto.SessionResponse](t, w)["sessions"]
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].Current)

	w = s.do(t, http.MethodGet, "/api/profile/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_sessions":1`)

	w = s.do(t, http.MethodPost, "/api/profile/2fa/setup", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	setup := decode[dto.TwoFactorSetupResponse](t, w)
	assert.NotEmpty(t, setup.Secret)
	assert.True(t, strings.HasPrefix(setup.QRCode, "data:image/png;base64,"))

	w = s.do(t, http.MethodPost, "/api/profile/2fa/enable", token, gin.H{"code": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/profile", token, nil).Code)

	token = s.login(t, "alice2", "pw1")
	w = s.do(t, http.MethodDelete, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/profile", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		s.do(t, http.MethodPost, "/api/login", "", gin.H{"username": "alice2", "password": "pw1"}).Code)
}

func TestUploadRoute(t *testing.T) {
	s := newServer(t)
	s.register(t, "alice", "pw1")
	token := s.login(t, "alice", "pw1")

	w := s.multipart(t, http.MethodPost, "/api/upload", token, nil, "image", "photo.png", testutils.PNG())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	imageURL := decode[map[string]string](t, w)["url"]
	assert.True(t, strings.HasPrefix(imageURL, services.PublicUploadPath))

	w = s.do(t, http.MethodPost, "/api/notes", token, gin.H{"title": "with image", "image_url": imageURL})
	require.Equal(t, http.StatusOK, w.Code)
	notes := decode[[]dto.NoteResponse](t, s.do(t, http.MethodGet, "/api/notes", token, nil))
	require.NotNil(t, notes[0].ImageURL)
	assert.Equal(t, imageURL, *notes[0].ImageURL)

	served := s.do(t, http.MethodGet, imageURL, "", nil)
	assert.Equal(t, http.StatusOK, served.Code)
	assert.Contains(t, served.Header().Get("Cache-Control"), "max-age=86400")

	w = s.multipart(t, http.MethodPost, "/api/upload", token, map[string]string{"x": "y"}, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.multipart(t, http.MethodPost, "/api/upload", token, nil, "image", "big.png", bytes.Repeat([]byte{1}, 8<<20))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	missing := s.do(t, http.MethodGet, services.PublicUploadPath+"missing.png", "", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "no-store", missing.Header().Get("Cache-Control"))
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["database"])
	assert.Contains(t, body, "cpu_percent")

	router := handler.SetupRouter(&handler.Services{
		Health: map[string]handler.HealthCheck{
			"database": func(context.Context) error { return errors.New("no primary") },
		},
	})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unavailable")

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
