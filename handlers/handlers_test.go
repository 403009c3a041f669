package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"taskcanvas/models"
	"taskcanvas/services"
)

type mockTasks struct {
	tasks     []models.Task
	created   models.NewTaskRequest
	patch     models.TaskPatch
	patchedID string
	err       error
}

func (m *mockTasks) ListTasks(_ context.Context, current, owner string) ([]models.Task, error) {
	if current != owner {
		return nil, models.NewError(models.ErrForbidden, "Access denied")
	}
	return m.tasks, m.err
}

func (m *mockTasks) CreateTask(_ context.Context, current string, req models.NewTaskRequest) (models.Task, error) {
	if m.err != nil {
		return models.Task{}, m.err
	}
	m.created = req
	return models.Task{ID: "t1", UserID: current, Title: req.Title, ColumnID: req.ColumnID, Labels: []models.Label{}}, nil
}

func (m *mockTasks) UpdateTask(_ context.Context, _, taskID string, patch models.TaskPatch) error {
	m.patchedID = taskID
	m.patch = patch
	return m.err
}

func (m *mockTasks) DeleteTask(_ context.Context, _, taskID string) error {
	return m.err
}

type mockBoards struct {
	saved *models.Layout
	err   error
}

func (m *mockBoards) GetBoard(_ context.Context, current, owner string) (models.Layout, error) {
	if current != owner {
		return models.Layout{}, models.NewError(models.ErrForbidden, "Access denied")
	}
	return models.DefaultLayout(), m.err
}

func (m *mockBoards) SaveBoard(_ context.Context, _, _ string, layout models.Layout) error {
	if m.err != nil {
		return m.err
	}
	m.saved = &layout
	return nil
}

type mockAuth struct {
	loggedOut string
}

func (m *mockAuth) Authenticate(_ context.Context, token string) (*services.Claims, error) {
	if token != "valid" {
		return nil, models.NewError(models.ErrUnauthorized, "Invalid token")
	}
	return &services.Claims{Email: "ana@example.com", RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ID: "jti-1"}}, nil
}

func (m *mockAuth) Signup(_ context.Context, req models.SignupRequest) (models.AuthResponse, error) {
	if req.Email == "taken@example.com" {
		return models.AuthResponse{}, models.NewError(models.ErrConflict, "User with this email already exists")
	}
	return models.AuthResponse{Token: "valid", User: models.User{ID: "u1", Name: req.Name, Email: req.Email}}, nil
}

func (m *mockAuth) Login(_ context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	if req.Password != "s3cret!" {
		return models.AuthResponse{}, models.NewError(models.ErrUnauthorized, "Invalid email or password")
	}
	return models.AuthResponse{Token: "valid", User: models.User{ID: "u1", Email: req.Email}}, nil
}

func (m *mockAuth) CurrentUser(_ context.Context, userID string) (models.User, error) {
	return models.User{ID: userID, Email: "ana@example.com"}, nil
}

func (m *mockAuth) Logout(_ context.Context, claims *services.Claims) error {
	m.loggedOut = claims.ID
	return nil
}

type fixture struct {
	tasks  *mockTasks
	boards *mockBoards
	auth   *mockAuth
	router http.Handler
}

func newFixture() *fixture {
	f := &fixture{tasks: &mockTasks{}, boards: &mockBoards{}, auth: &mockAuth{}}
	f.router = NewRouter(Dependencies{Tasks: f.tasks, Boards: f.boards, Auth: f.auth})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer valid")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	return body["message"]
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture()
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/tasks/u1"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodPut, "/api/tasks/t1"},
		{http.MethodDelete, "/api/tasks/t1"},
		{http.MethodGet, "/api/board/u1"},
		{http.MethodPut, "/api/board/u1"},
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/auth/logout"},
	} {
		rec := f.do(t, route.method, route.path, "{}", false)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: status %d, want 401", route.method, route.path, rec.Code)
		}
	}
}

func TestCreateTask(t *testing.T) {
	f := newFixture()
	rec := f.do(t, http.MethodPost, "/api/tasks", `{"title":"Write","columnId":"column-1","labels":["red"]}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var task models.Task
	if err := json.NewDecoder(rec.Body).Decode(&task); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if task.ID != "t1" || task.UserID != "u1" {
		t.Fatalf("unexpected task %+v", task)
	}
	if f.tasks.created.Title != "Write" || len(f.tasks.created.Labels) != 1 {
		t.Fatalf("service got %+v", f.tasks.created)
	}
}

func TestCreateTaskBadPayload(t *testing.T) {
	f := newFixture()
	rec := f.do(t, http.MethodPost, "/api/tasks", `{"title":`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if msg := message(t, rec); msg != "invalid request payload" {
		t.Fatalf("message %q", msg)
	}
}

func TestGetTasksForbidden(t *testing.T) {
	f := newFixture()
	rec := f.do(t, http.MethodGet, "/api/tasks/u2", "", true)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status %d, want 403", rec.Code)
	}
}

func TestUpdateTask(t *testing.T) {
	f := newFixture()
	rec := f.do(t, http.MethodPut, "/api/tasks/t7", `{"title":" New ","columnId":"column-2"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if msg := message(t, rec); msg != "Task updated successfully" {
		t.Fatalf("message %q", msg)
	}
	if f.tasks.patchedID != "t7" || *f.tasks.patch.Title != "New" || *f.tasks.patch.ColumnID != "column-2" {
		t.Fatalf("service got %s %+v", f.tasks.patchedID, f.tasks.patch)
	}
	if f.tasks.patch.Labels != nil || f.tasks.patch.Description != nil {
		t.Fatal("absent fields should stay nil")
	}
}

func TestUpdateTaskRejectsImmutableFields(t *testing.T) {
	f := newFixture()
	for _, body := range []string{`{"id":"x"}`, `{"createdAt":"2024-01-01T00:00:00Z"}`, `{"userId":"u2"}`, `{"status":"done"}`} {
		rec := f.do(t, http.MethodPut, "/api/tasks/t1", body, true)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d, want 400", body, rec.Code)
		}
	}
	if f.tasks.patchedID != "" {
		t.Fatal("service should not be called")
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{models.NewError(models.ErrNotFound, "Task not found"), http.StatusNotFound, "Task not found"},
		{models.NewError(models.ErrForbidden, "Access denied"), http.StatusForbidden, "Access denied"},
		{models.NewError(models.ErrValidation, "title cannot be empty"), http.StatusBadRequest, "title cannot be empty"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Server error"},
	}
	for _, tc := range cases {
		f := newFixture()
		f.tasks.err = tc.err
		rec := f.do(t, http.MethodDelete, "/api/tasks/t1", "", true)
		if rec.Code != tc.status {
			t.Fatalf("%v: status %d, want %d", tc.err, rec.Code, tc.status)
		}
		if msg := message(t, rec); msg != tc.msg {
			t.Fatalf("%v: message %q, want %q", tc.err, msg, tc.msg)
		}
	}
}

func TestDeleteTask(t *testing.T) {
	f := newFixture()
	rec := f.do(t, http.MethodDelete, "/api/tasks/t1", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if msg := message(t, rec); msg != "Task deleted successfully" {
		t.Fatalf("message %q", msg)
	}
}

func TestBoardRoutes(t *testing.T) {
	f := newFixture()
	rec := f.do(t, http.MethodGet, "/api/board/u1", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var layout models.Layout
	if err := json.NewDecoder(rec.Body).Decode(&layout); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(layout.Columns) != 3 || layout.Columns[2].ID != "column-3" {
		t.Fatalf("unexpected layout %+v", layout)
	}

	rec = f.do(t, http.MethodPut, "/api/board/u1", `{"board":{"columns":[{"id":"a","title":"A","taskIds":["t1"]}]}}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status %d: %s", rec.Code, rec.Body.String())
	}
	if f.boards.saved == nil || f.boards.saved.Columns[0].TaskIDs[0] != "t1" {
		t.Fatalf("service got %+v", f.boards.saved)
	}

	rec = f.do(t, http.MethodPut, "/api/board/u1", `{"columns":[]}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing board: status %d, want 400", rec.Code)
	}
}

func TestAuthRoutes(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/auth/signup", `{"name":"Ana","email":"ana@example.com","password":"s3cret!"}`, false)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status %d", rec.Code)
	}
	var resp models.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token != "valid" || resp.User.ID != "u1" {
		t.Fatalf("unexpected response %+v", resp)
	}

	rec = f.do(t, http.MethodPost, "/api/auth/signup", `{"name":"Ana","email":"taken@example.com","password":"s3cret!"}`, false)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup status %d, want 409", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/auth/login", `{"email":"ana@example.com","password":"nope"}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status %d, want 401", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/auth/me", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/auth/logout", "", true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status %d", rec.Code)
	}
	if f.auth.loggedOut != "jti-1" {
		t.Fatalf("revoked %q", f.auth.loggedOut)
	}
}

func TestHealth(t *testing.T) {
	down := NewRouter(Dependencies{
		Tasks: &mockTasks{}, Boards: &mockBoards{}, Auth: &mockAuth{},
		Health: func(context.Context) error { return errors.New("no primary") },
	})
	rec := httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rec.Code)
	}

	rec = newFixture().do(t, http.MethodGet, "/healthz", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
}
