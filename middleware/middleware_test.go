package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskcanvas/models"
	"taskcanvas/services"
)

type fakeAuth struct {
	tokens map[string]string
}

func (f fakeAuth) Authenticate(_ context.Context, token string) (*services.Claims, error) {
	userID, ok := f.tokens[token]
	if !ok {
		return nil, models.NewError(models.ErrUnauthorized, "Token has been revoked")
	}
	return &services.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID, ID: "jti-" + userID}}, nil
}

func TestJWTAuth(t *testing.T) {
	var seen string
	protected := JWTAuth(fakeAuth{tokens: map[string]string{"good": "u1"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name   string
		header string
		status int
		msg    string
	}{
		{"missing header", "", http.StatusUnauthorized, "Authorization header missing"},
		{"no bearer prefix", "good", http.StatusUnauthorized, "Bearer token missing"},
		{"rejected token", "Bearer bad", http.StatusUnauthorized, "Token has been revoked"},
		{"valid token", "Bearer good", http.StatusNoContent, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status %d, want %d", rec.Code, tc.status)
			}
			if tc.msg != "" {
				var body map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body["message"] != tc.msg {
					t.Fatalf("message %q, want %q", body["message"], tc.msg)
				}
				if seen != "" {
					t.Fatal("handler should not run")
				}
			} else if seen != "u1" {
				t.Fatalf("user id %q in context", seen)
			}
		})
	}
}

func TestUserIDFromContextEmpty(t *testing.T) {
	if id := UserIDFromContext(context.Background()); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
	ctx := WithClaims(context.Background(), &services.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u9"}})
	if id := UserIDFromContext(ctx); id != "u9" {
		t.Fatalf("expected u9, got %q", id)
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics, RequestLogger)
	r.HandleFunc("/api/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}).Methods(http.MethodDelete)

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/tasks/"+id, nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("status %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	want := `taskcanvas_http_requests_total{method="DELETE",route="/api/tasks/{id}",status="418"} 2`
	if !strings.Contains(body, want) {
		t.Fatalf("metrics output missing %q", want)
	}
	if strings.Contains(body, `route="/api/tasks/a"`) {
		t.Fatal("raw path leaked into labels")
	}
}

func TestTimeout(t *testing.T) {
	slow := Timeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	rec := httptest.NewRecorder()
	slow.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type %q, want application/json", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["message"] != "request timed out" {
		t.Fatalf("unexpected body %q (%v)", rec.Body.String(), err)
	}
}

func TestTimeoutKeepsHandlerResponse(t *testing.T) {
	fast := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("ok"))
	}))
	rec := httptest.NewRecorder()
	fast.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot || rec.Header().Get("Content-Type") != "text/plain" || rec.Body.String() != "ok" {
		t.Fatalf("response altered: %d %q %q", rec.Code, rec.Header().Get("Content-Type"), rec.Body.String())
	}
}
