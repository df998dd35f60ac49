package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ethicrawler/internal/models"
	"ethicrawler/internal/service"

	"github.com/gin-gonic/gin"
)

type fakeResolver map[string]*models.PaymentRecord

func (f fakeResolver) ResolveToken(_ context.Context, token string) (*models.PaymentRecord, error) {
	if token == "boom" {
		return nil, errors.New("store down")
	}
	if rec, ok := f[token]; ok {
		return rec, nil
	}
	return nil, service.ErrBadJWT
}

func gatedEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	resolver := fakeResolver{"good": {PaymentID: "pay_1", SiteID: "site123"}}
	r.GET("/content/*path", PaymentRequired(resolver, "/api/v1/invoices"), func(c *gin.Context) {
		c.String(http.StatusOK, GetPaymentRecord(c).PaymentID)
	})
	return r
}

func TestPaymentRequired_NoToken(t *testing.T) {
	w := httptest.NewRecorder()
	gatedEngine().ServeHTTP(w, httptest.NewRequest("GET", "/content/article", nil))

	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("Expected 402, got %d", w.Code)
	}
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["invoice_url"] != "/api/v1/invoices" {
		t.Errorf("Expected invoice_url in body, got %v", body)
	}
	if w.Header().Get("X-Payment-Required") != "true" {
		t.Error("Expected X-Payment-Required header")
	}
}

func TestPaymentRequired_TokenSources(t *testing.T) {
	cases := map[string]func(*http.Request){
		"bearer": func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") },
		"header": func(r *http.Request) { r.Header.Set("X-Payment-Token", "good") },
		"query":  func(r *http.Request) { r.URL.RawQuery = "payment_token=good" },
	}
	for name, set := range cases {
		req := httptest.NewRequest("GET", "/content/article", nil)
		set(req)
		w := httptest.NewRecorder()
		gatedEngine().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", name, w.Code)
			continue
		}
		if w.Body.String() != "pay_1" {
			t.Errorf("%s: expected record in context, got %q", name, w.Body.String())
		}
		if w.Header().Get("X-Payment-Verified") != "true" {
			t.Errorf("%s: expected X-Payment-Verified", name)
		}
	}
}

func TestPaymentRequired_BadToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/content/article", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w := httptest.NewRecorder()
	gatedEngine().ServeHTTP(w, req)

	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("Expected 402, got %d", w.Code)
	}
	var body struct {
		Code int `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Code != int(service.CodeBadJWT) {
		t.Errorf("Expected code 5, got %d", body.Code)
	}
}

func TestPaymentRequired_ResolverFailure(t *testing.T) {
	req := httptest.NewRequest("GET", "/content/article", nil)
	req.Header.Set("X-Payment-Token", "boom")
	w := httptest.NewRecorder()
	gatedEngine().ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
}

func TestAdminKeyRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	r := gin.New()
	r.POST("/admin", AdminKeyRequired("s3cret"), ok)
	r.POST("/disabled", AdminKeyRequired(""), ok)

	cases := []struct {
		path, key string
		want      int
	}{
		{"/admin", "s3cret", http.StatusNoContent},
		{"/admin", "wrong", http.StatusUnauthorized},
		{"/admin", "", http.StatusUnauthorized},
		{"/disabled", "", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("POST", tc.path, nil)
		if tc.key != "" {
			req.Header.Set("X-Admin-Key", tc.key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("%s key=%q: expected %d, got %d", tc.path, tc.key, tc.want, w.Code)
		}
	}
}

func TestRateLimiter_Window(t *testing.T) {
	limiter := NewInMemoryRateLimiter(2, time.Minute)
	defer limiter.Stop()
	now := time.Unix(1000, 0)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("a") || !limiter.Allow("a") {
		t.Fatal("Expected first two requests allowed")
	}
	if limiter.Allow("a") {
		t.Error("Expected third request limited")
	}
	if !limiter.Allow("b") {
		t.Error("Expected other key unaffected")
	}

	now = now.Add(61 * time.Second)
	if !limiter.Allow("a") {
		t.Error("Expected window to slide")
	}

	now = now.Add(2 * time.Minute)
	limiter.Sweep()
	limiter.mu.Lock()
	n := len(limiter.requests)
	limiter.mu.Unlock()
	if n != 0 {
		t.Errorf("Expected sweep to drop idle keys, got %d", n)
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewInMemoryRateLimiter(1, time.Minute)
	defer limiter.Stop()
	r := gin.New()
	r.Use(RateLimit(limiter, nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		if w.Code != want {
			t.Errorf("request %d: expected %d, got %d", i, want, w.Code)
		}
	}
}
