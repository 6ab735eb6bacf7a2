package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func authRouter(keys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(keys))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		header map[string]string
		want   int
	}{
		{"no keys configured is open", nil, nil, http.StatusOK},
		{"missing key rejected", []string{"k1"}, nil, http.StatusUnauthorized},
		{"wrong key rejected", []string{"k1"}, map[string]string{"X-API-Key": "bad"}, http.StatusUnauthorized},
		{"x-api-key accepted", []string{"k1"}, map[string]string{"X-API-Key": "k1"}, http.StatusOK},
		{"bearer accepted", []string{"k1"}, map[string]string{"Authorization": "Bearer k1"}, http.StatusOK},
		{"bearer wrong key rejected", []string{"k1"}, map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authRouter(tt.keys)
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
