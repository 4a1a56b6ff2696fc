package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"todo-api/internal/app"
	"todo-api/internal/repository"
	"todo-api/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubAuthenticator struct {
	identity *app.Identity
	err      error
	token    string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*app.Identity, error) {
	s.token = token
	return s.identity, s.err
}

type body struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Errors  []validation.FieldError `json:"errors"`
}

func serve(t *testing.T, r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, body) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var b body
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec, b
}

func TestClassify(t *testing.T) {
	verr := &validation.Errors{Fields: []validation.FieldError{{Field: "title", Rule: "required", Message: "is required"}}}

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", verr, http.StatusBadRequest, "Validation error"},
		{"duplicate", fmt.Errorf("create: %w", repository.ErrDuplicate), http.StatusConflict, "Resource already exists"},
		{"not found", repository.ErrNotFound, http.StatusNotFound, "Resource not found"},
		{"app error", app.ErrTodoNotFound, http.StatusNotFound, "Todo not found"},
		{"wrapped app error", fmt.Errorf("x: %w", app.ErrInvalidCredentials), http.StatusUnauthorized, "Invalid credentials"},
		{"body too large", fmt.Errorf("read: %w", &http.MaxBytesError{Limit: 10}), http.StatusRequestEntityTooLarge, "Request body too large"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message, _ := Classify(tt.err)
			if status != tt.status || message != tt.message {
				t.Errorf("Classify() = %d %q, want %d %q", status, message, tt.status, tt.message)
			}
		})
	}
}

func TestErrorHandlerWritesEnvelope(t *testing.T) {
	var logs bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(slog.New(slog.NewJSONHandler(&logs, nil))))
	r.GET("/invalid", func(c *gin.Context) {
		_ = c.Error(&validation.Errors{Fields: []validation.FieldError{{Field: "priority", Rule: "oneof", Message: "bad"}}})
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("db password=hunter2 leaked"))
	})
	r.GET("/written", func(c *gin.Context) {
		c.String(http.StatusTeapot, "short and stout")
		_ = c.Error(errors.New("late"))
	})

	rec, b := serve(t, r, httptest.NewRequest(http.MethodGet, "/invalid", nil))
	if rec.Code != http.StatusBadRequest || b.Success || len(b.Errors) != 1 || b.Errors[0].Field != "priority" {
		t.Errorf("validation response = %d %+v", rec.Code, b)
	}

	rec, b = serve(t, r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError || b.Message != "Internal server error" {
		t.Errorf("internal response = %d %+v", rec.Code, b)
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Error("internal error detail leaked to the client")
	}
	if !strings.Contains(logs.String(), `"level":"ERROR"`) || !strings.Contains(logs.String(), "request_id") {
		t.Errorf("expected error log with request id, got %s", logs.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/written", nil))
	if rec.Code != http.StatusTeapot || rec.Body.String() != "short and stout" {
		t.Errorf("already written response was replaced: %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuthJWT(t *testing.T) {
	newRouter := func(auth Authenticator) *gin.Engine {
		r := gin.New()
		r.Use(ErrorHandler(discardLogger()))
		r.GET("/me", AuthJWT(auth), func(c *gin.Context) {
			identity, ok := CurrentUser(c)
			if !ok {
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "message": identity.ID})
		})
		return r
	}

	t.Run("valid token", func(t *testing.T) {
		auth := &stubAuthenticator{identity: &app.Identity{ID: "u1", Email: "u1@example.com"}}
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer abc.def.ghi")

		rec, b := serve(t, newRouter(auth), req)
		if rec.Code != http.StatusOK || b.Message != "u1" {
			t.Errorf("response = %d %+v", rec.Code, b)
		}
		if auth.token != "abc.def.ghi" {
			t.Errorf("authenticator got token %q", auth.token)
		}
	})

	tests := []struct {
		name    string
		header  string
		authErr error
		message string
	}{
		{"no header", "", nil, "Authentication required"},
		{"basic scheme", "Basic dXNlcjpwdw==", nil, "Authentication required"},
		{"empty bearer", "Bearer ", nil, "Authentication required"},
		{"rejected token", "Bearer bad", app.ErrInvalidToken, "Invalid or expired token"},
		{"deleted user", "Bearer old", app.ErrUserGone, "User no longer exists"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &stubAuthenticator{err: tt.authErr}
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec, b := serve(t, newRouter(auth), req)
			if rec.Code != http.StatusUnauthorized || b.Message != tt.message {
				t.Errorf("response = %d %q, want 401 %q", rec.Code, b.Message, tt.message)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(discardLogger()))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	rec, b := serve(t, r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if rec.Code != http.StatusInternalServerError || b.Message != "Internal server error" || b.Success {
		t.Errorf("response = %d %+v", rec.Code, b)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(RequestIDHeader)
	if generated == "" || rec.Body.String() != generated {
		t.Errorf("generated id header %q, body %q", generated, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != "client-supplied" {
		t.Errorf("incoming id not propagated: %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestLoggerLevelsAndRedaction(t *testing.T) {
	var logs bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), Logger(slog.New(slog.NewJSONHandler(&logs, nil))))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Authorization", "Bearer secret-token-value")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), logs.String())
	}
	var first, second map[string]any
	_ = json.Unmarshal([]byte(lines[0]), &first)
	_ = json.Unmarshal([]byte(lines[1]), &second)
	if first["level"] != "INFO" || first["status_code"] != float64(200) || first["path"] != "/ok" {
		t.Errorf("first entry = %v", first)
	}
	if second["level"] != "WARN" {
		t.Errorf("second entry level = %v, want WARN", second["level"])
	}
	if strings.Contains(logs.String(), "secret-token-value") {
		t.Error("authorization header was logged")
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example" {
		t.Errorf("allow origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("unlisted origin was allowed: %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestSecureHeaders(t *testing.T) {
	for _, dev := range []bool{true, false} {
		r := gin.New()
		r.Use(SecureHeaders(dev))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Header().Get("X-Frame-Options") != "DENY" {
			t.Errorf("dev=%v: missing X-Frame-Options", dev)
		}
		if hsts := rec.Header().Get("Strict-Transport-Security"); (hsts == "") != dev {
			t.Errorf("dev=%v: HSTS = %q", dev, hsts)
		}
	}
}
