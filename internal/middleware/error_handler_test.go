package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestHTTPErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.GET("/http", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	})
	e.GET("/plain", func(c echo.Context) error {
		return errors.New("pq: relation does not exist")
	})

	tests := []struct {
		path, lang string
		code       int
		body       string
	}{
		{"/http", "", http.StatusNotFound, `{"error":"Post not found"}`},
		{"/plain", "", http.StatusInternalServerError, `{"error":"Internal server error"}`},
		{"/plain", "ru", http.StatusInternalServerError, `{"error":"Внутренняя ошибка сервера"}`},
		{"/missing", "", http.StatusNotFound, `{"error":"Not Found"}`},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		req.Header.Set("Accept-Language", tt.lang)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, tt.code, rec.Code, tt.path)
		assert.JSONEq(t, tt.body, rec.Body.String(), tt.path)
	}
}
