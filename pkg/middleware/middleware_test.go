package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"travelbook/pkg/config"
	"travelbook/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-with-enough-bytes"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func orgEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(OrganizationID(r.Context())))
	})
}

func TestAuth(t *testing.T) {
	valid := signToken(t, jwt.MapClaims{"org_id": "org-7", "exp": time.Now().Add(time.Hour).Unix()}, testSecret)
	expired := signToken(t, jwt.MapClaims{"org_id": "org-7", "exp": time.Now().Add(-time.Hour).Unix()}, testSecret)
	noOrg := signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}, testSecret)
	wrongKey := signToken(t, jwt.MapClaims{"org_id": "org-7", "exp": time.Now().Add(time.Hour).Unix()}, "other-secret")

	tests := []struct {
		name       string
		secret     string
		header     map[string]string
		wantStatus int
		wantOrg    string
	}{
		{name: "valid token", secret: testSecret, header: map[string]string{"Authorization": "Bearer " + valid}, wantStatus: http.StatusOK, wantOrg: "org-7"},
		{name: "missing token", secret: testSecret, wantStatus: http.StatusUnauthorized},
		{name: "expired token", secret: testSecret, header: map[string]string{"Authorization": "Bearer " + expired}, wantStatus: http.StatusUnauthorized},
		{name: "no org claim", secret: testSecret, header: map[string]string{"Authorization": "Bearer " + noOrg}, wantStatus: http.StatusUnauthorized},
		{name: "wrong key", secret: testSecret, header: map[string]string{"Authorization": "Bearer " + wrongKey}, wantStatus: http.StatusUnauthorized},
		{name: "disabled uses header", header: map[string]string{OrganizationHeader: "org-9"}, wantStatus: http.StatusOK, wantOrg: "org-9"},
		{name: "disabled default org", wantStatus: http.StatusOK, wantOrg: config.DefaultOrganizationID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Auth(tt.secret, "org_id", logger.Discard())(orgEcho())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/requests", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantOrg != "" && rec.Body.String() != tt.wantOrg {
				t.Errorf("organization = %q, want %q", rec.Body.String(), tt.wantOrg)
			}
		})
	}
}

func TestRequestLogging_SeesOrganizationSetDownstream(t *testing.T) {
	var seen context.Context
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context()
	})
	h := RequestLogging(logger.Discard())(Auth("", "org_id", logger.Discard())(inner))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(OrganizationHeader, "org-3")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get(RequestIDHeader) == "" {
		t.Errorf("request id header not set")
	}
	if RequestID(seen) == "" {
		t.Errorf("request id not in context")
	}
	info, _ := seen.Value(requestInfoKey).(*requestInfo)
	if info == nil || info.organizationID != "org-3" {
		t.Errorf("request info = %+v", info)
	}
}

func TestContentTypeValidation(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{name: "json post", method: http.MethodPost, body: `{}`, contentType: "application/json; charset=utf-8", want: http.StatusOK},
		{name: "form post", method: http.MethodPost, body: `a=b`, contentType: "application/x-www-form-urlencoded", want: http.StatusUnsupportedMediaType},
		{name: "bodyless post", method: http.MethodPost, want: http.StatusOK},
		{name: "get", method: http.MethodGet, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ContentTypeValidation(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, "/", nil)
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestIdempotency_ReplaysSuccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	calls := 0
	h := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"b1"}`))
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/bookings", nil)
		req.Header.Set(IdempotencyHeader, "key-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated || rec.Body.String() != `{"id":"b1"}` {
			t.Fatalf("attempt %d: status=%d body=%q", i, rec.Code, rec.Body.String())
		}
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", nil)
	req.Header.Set(IdempotencyHeader, "key-1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if calls != 2 {
		t.Errorf("same key on another path should not replay")
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewClientRateLimiter(2, time.Minute, nil, logger.Discard())
	defer limiter.Stop()

	h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client limited: %d", rec.Code)
	}
}

func TestRequestTimeout(t *testing.T) {
	h := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rec.Code)
	}
}

func TestRequestTimeout_ClientGoneWritesNothing(t *testing.T) {
	h := RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	if rec.Body.Len() != 0 {
		t.Errorf("body written for aborted request: %q", rec.Body.String())
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestMaxRequestSize(t *testing.T) {
	h := MaxRequestSize(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", rec.Code)
	}
}
