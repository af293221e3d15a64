package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.Any("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func doRequest(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitPerIP(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	r := newRouter(limiter.RateLimit())

	request := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return doRequest(r, req)
	}

	for i := 0; i < 2; i++ {
		if w := request("10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, w.Code)
		}
	}
	w := request("10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}

	if w := request("10.0.0.2"); w.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", w.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	limiter := NewIPRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("request %d rejected with limiting disabled", i)
		}
	}
}

func TestCleanupRemovesIdleClients(t *testing.T) {
	limiter := NewIPRateLimiter(60, 1)
	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.2")

	if n := limiter.cleanup(time.Now()); n != 0 {
		t.Errorf("cleanup removed %d fresh clients", n)
	}
	if n := limiter.cleanup(time.Now().Add(11 * time.Minute)); n != 2 {
		t.Errorf("cleanup removed %d idle clients, want 2", n)
	}
}

func TestRequestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(RequestSizeLimit(16))
	r.POST("/", func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too large")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	small := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny"))
	if w := doRequest(r, small); w.Code != http.StatusOK {
		t.Errorf("small body status = %d", w.Code)
	}

	big := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	if w := doRequest(r, big); w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large body status = %d", w.Code)
	}

	// Unknown length is cut off while reading.
	chunked := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	chunked.ContentLength = -1
	if w := doRequest(r, chunked); w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("chunked body status = %d", w.Code)
	}
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	r := newRouter(RequestLogger())
	if w := doRequest(r, httptest.NewRequest(http.MethodGet, "/", nil)); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
