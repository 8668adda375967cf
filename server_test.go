package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestReadinessMiddleware_GatesUntilSessionStoreIsUp(t *testing.T) {
	gin.SetMode(gin.TestMode)
	prev := sessionStore
	sessionStore = nil
	defer func() { sessionStore = prev }()

	router := gin.New()
	router.Use(readinessMiddleware())
	router.POST("/api/imports/orders/confirm", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodPost, "/api/imports/orders/confirm", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before the session store is initialized, got %d", recorder.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("health check must answer while unready, got %d", recorder.Code)
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" https://a.example , ,https://b.example")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected result: %v", got)
	}
}
