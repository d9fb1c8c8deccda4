package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mhartley/notifeed/internal/app"
	"github.com/mhartley/notifeed/internal/database/testutil"
	"github.com/mhartley/notifeed/internal/middleware"
	"github.com/mhartley/notifeed/internal/services"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)

	cfg := &app.Config{}
	cfg.Notifications.FeedLimit = 25
	cfg.Monitoring.Health.Enabled = true

	router, err := NewRouter(db, cfg)
	require.NoError(t, err)

	return router, db
}

func TestRouterFeedRequiresIdentityHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterFeedRoundTrip(t *testing.T) {
	router, db := newTestRouter(t)

	svc, err := services.NewNotificationService(db)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), services.CreateNotificationInput{
		UserID: "user-1",
		Type:   "invoice.created",
		Title:  "Invoice #3 created",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.Header.Set(middleware.UserIDHeader, "user-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Success bool             `json:"success"`
		Data    services.FeedDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.Equal(t, 1, envelope.Data.UnreadCount)
	require.Len(t, envelope.Data.Notifications, 1)
}

func TestRouterMarkAllReadRoundTrip(t *testing.T) {
	router, db := newTestRouter(t)

	svc, err := services.NewNotificationService(db)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = svc.Create(context.Background(), services.CreateNotificationInput{
			UserID: "user-1",
			Type:   "invoice.created",
			Title:  "unread",
		})
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/mark-all-read", nil)
	req.Header.Set(middleware.UserIDHeader, "user-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	feed, err := svc.Feed(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Equal(t, 0, feed.UnreadCount)
}

func TestRouterHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
}
