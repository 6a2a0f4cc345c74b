package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter() *gin.Engine {
	r := gin.New()
	h := NewPostingHandler(nil, nil)
	r.POST("/api/postings", h.Create)
	r.GET("/api/postings/:id", h.Get)
	r.POST("/api/postings/:id/cancel", h.Cancel)
	r.POST("/api/postings/:id/start", h.Start)
	r.POST("/api/postings/:id/complete", h.Complete)

	s := NewSearchHandler(nil, nil, 2.0)
	r.GET("/api/search", s.Search)
	r.GET("/api/nearby", s.Nearby)
	return r
}

func TestCreateRejectsInvalidRequests(t *testing.T) {
	validBody := `{"kind":"RIDE","originLat":30.05,"originLng":31.35,` +
		`"destinationLat":30.03,"destinationLng":31.20,` +
		`"time":"2026-03-14T09:00:00Z","seats":3,"price":55}`

	tests := []struct {
		name       string
		userID     string
		body       string
		wantStatus int
	}{
		{"missing user header", "", validBody, http.StatusUnauthorized},
		{"malformed user header", "u1;drop", validBody, http.StatusUnauthorized},
		{"empty body", "u1", "", http.StatusBadRequest},
		{"not json", "u1", "originLat=30", http.StatusBadRequest},
		{"missing kind", "u1", `{"originLat":30,"originLng":31,"destinationLat":30,"destinationLng":31.2,"time":"2026-03-14T09:00:00Z","seats":1}`, http.StatusBadRequest},
		{"zero seats", "u1", `{"kind":"RIDE","originLat":30,"originLng":31,"destinationLat":30,"destinationLng":31.2,"time":"2026-03-14T09:00:00Z","seats":0}`, http.StatusBadRequest},
		{"non-rfc3339 time", "u1", `{"kind":"RIDE","originLat":30,"originLng":31,"destinationLat":30,"destinationLng":31.2,"time":"tomorrow","seats":1}`, http.StatusBadRequest},
	}
	router := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/postings", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.userID != "" {
				req.Header.Set("X-User-ID", tt.userID)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestGetRejectsInvalidID(t *testing.T) {
	router := newTestRouter()
	for _, id := range []string{"a-b", "id%20x", strings.Repeat("a", 33)} {
		req := httptest.NewRequest(http.MethodGet, "/api/postings/"+id, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET /api/postings/%s status = %d, want 400", id, w.Code)
		}
	}
}

func TestTransitionsRequireIdentity(t *testing.T) {
	router := newTestRouter()
	for _, action := range []string{"cancel", "start", "complete"} {
		req := httptest.NewRequest(http.MethodPost, "/api/postings/abc123/"+action, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("POST %s status = %d, want 401", action, w.Code)
		}
	}
}

func TestSearchRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"no coordinates and no cities", ""},
		{"missing end", "startLat=30&startLng=31"},
		{"non-numeric with no city fallback", "startLat=x&startLng=31&endLat=30&endLng=31.2"},
		{"bad date", "startLat=30&startLng=31&endLat=30&endLng=31.2&date=14-03-2026"},
		{"city fallback missing destination", "from=Cairo"},
	}
	router := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/search?"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestNearbyRejectsMissingCoordinates(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/nearby?lat=30.05", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestIsValidID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"abc123", true},
		{"ABCdef009", true},
		{strings.Repeat("f", 32), true},
		{strings.Repeat("f", 33), false},
		{"a b", false},
		{"a;b", false},
		{"a-b", false},
	}
	for _, tt := range tests {
		if got := isValidID(tt.in); got != tt.want {
			t.Errorf("isValidID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
