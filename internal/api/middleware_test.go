package api_test

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/redline-eval/redline/internal/api"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		header string
		path   string
		want   int
	}{
		{"disabled", "", "", "/v1/evaluate", http.StatusOK},
		{"valid key", "secret", "secret", "/v1/evaluate", http.StatusOK},
		{"missing key", "secret", "", "/v1/evaluate", http.StatusUnauthorized},
		{"wrong key", "secret", "nope", "/v1/evaluate", http.StatusUnauthorized},
		{"health probe", "secret", "", "/healthz", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("X-API-Key", tc.header)
			}
			rec := httptest.NewRecorder()
			api.APIKeyAuth(tc.key)(okHandler).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	t.Run("any origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/evaluate", nil)
		rec := httptest.NewRecorder()
		api.CORS(nil)(okHandler).ServeHTTP(rec, req)
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("allow-origin = %q, want *", rec.Header().Get("Access-Control-Allow-Origin"))
		}
		if rec.Code != http.StatusOK {
			t.Errorf("preflight status = %d", rec.Code)
		}
	})

	t.Run("allow list", func(t *testing.T) {
		mw := api.CORS([]string{"https://app.example.com"})

		req := httptest.NewRequest(http.MethodGet, "/v1/tasks/x", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		mw(okHandler).ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Errorf("allow-origin = %q", got)
		}

		req = httptest.NewRequest(http.MethodGet, "/v1/tasks/x", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec = httptest.NewRecorder()
		mw(okHandler).ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("unexpected allow-origin %q for unlisted origin", got)
		}
	})
}

func TestRateLimit(t *testing.T) {
	h := api.RateLimit(0.001, 2)(okHandler)

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/evaluate", nil))
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	rec := httptest.NewRecorder()
	api.RateLimit(0, 0)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("disabled limiter status = %d", rec.Code)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	api.Chain(okHandler, mark("outer"), mark("inner")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("order = %v, want [outer inner]", order)
	}
}

// requestCount scrapes /metrics for the request counter of one route and code.
func requestCount(t *testing.T, baseURL, route, code string) float64 {
	t.Helper()
	resp, err := http.Get(baseURL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "redline_http_requests_total{") ||
			!strings.Contains(line, `route="`+route+`"`) ||
			!strings.Contains(line, `code="`+code+`"`) {
			continue
		}
		fields := strings.Fields(line)
		v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			t.Fatalf("parsing %q: %v", line, err)
		}
		return v
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	return 0
}

func TestInstrumentLabelsRoutePattern(t *testing.T) {
	srv := newServer(t, nil, nil, api.Instrument(zap.NewNop()))

	before := requestCount(t, srv.URL, "POST /v1/evaluate", "200")
	post(t, srv.URL+"/v1/evaluate", map[string]string{"narrative": routineNarrative})
	post(t, srv.URL+"/v1/evaluate", map[string]string{"narrative": " "})

	if got := requestCount(t, srv.URL, "POST /v1/evaluate", "200"); got != before+1 {
		t.Errorf("200 count = %v, want %v", got, before+1)
	}
	if got := requestCount(t, srv.URL, "POST /v1/evaluate", "400"); got < 1 {
		t.Errorf("400 count = %v, want at least 1", got)
	}

	resp, err := http.Get(srv.URL + "/no/such/route")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := requestCount(t, srv.URL, "unmatched", "404"); got < 1 {
		t.Errorf("unmatched 404 count = %v, want at least 1", got)
	}
}
