package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mhartley/notifeed/internal/database/testutil"
	"github.com/mhartley/notifeed/internal/middleware"
	"github.com/mhartley/notifeed/internal/models"
	"github.com/mhartley/notifeed/internal/services"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestHandler(t *testing.T) (*NotificationHandler, *services.NotificationService, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	handler, err := NewNotificationHandler(db, 25)
	require.NoError(t, err)

	svc, err := services.NewNotificationService(db)
	require.NoError(t, err)

	return handler, svc, db
}

func seedFeed(t *testing.T, svc *services.NotificationService, db *gorm.DB, userID string, titles []string, base time.Time) {
	t.Helper()
	for i, title := range titles {
		dto, err := svc.Create(context.Background(), services.CreateNotificationInput{
			UserID: userID,
			Type:   "invoice.created",
			Title:  title,
		})
		require.NoError(t, err)
		require.NoError(t, db.Model(&models.Notification{}).
			Where("id = ?", dto.ID).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}
}

func performRequest(t *testing.T, userID, method, target string, body []byte, params gin.Params, handle gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	c.Request = req
	c.Params = params
	if userID != "" {
		c.Set(middleware.CtxUserIDKey, userID)
	}

	handle(c)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestNotificationHandlerFeed(t *testing.T) {
	handler, svc, db := newTestHandler(t)
	base := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

	seedFeed(t, svc, db, "user-1", []string{"first", "second", "third"}, base)

	w := performRequest(t, "user-1", http.MethodGet, "/api/notifications", nil, nil, handler.Feed)
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	require.True(t, envelope.Success)

	var feed services.FeedDTO
	require.NoError(t, json.Unmarshal(envelope.Data, &feed))
	require.Equal(t, 3, feed.UnreadCount)
	require.Len(t, feed.Notifications, 3)
	require.Equal(t, "third", feed.Notifications[0].Title, "newest first")
}

func TestNotificationHandlerFeedHonoursLimitQuery(t *testing.T) {
	handler, svc, db := newTestHandler(t)
	base := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

	seedFeed(t, svc, db, "user-1", []string{"a", "b", "c", "d"}, base)

	w := performRequest(t, "user-1", http.MethodGet, "/api/notifications?limit=2", nil, nil, handler.Feed)
	require.Equal(t, http.StatusOK, w.Code)

	var feed services.FeedDTO
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &feed))
	require.Equal(t, 4, feed.UnreadCount)
	require.Len(t, feed.Notifications, 2)
}

func TestNotificationHandlerFeedRequiresIdentity(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	w := performRequest(t, "", http.MethodGet, "/api/notifications", nil, nil, handler.Feed)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	envelope := decodeEnvelope(t, w)
	require.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	require.Equal(t, "UNAUTHORIZED", envelope.Error.Code)
}

func TestNotificationHandlerMarkAllRead(t *testing.T) {
	handler, svc, db := newTestHandler(t)
	base := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

	seedFeed(t, svc, db, "user-1", []string{"a", "b"}, base)

	w := performRequest(t, "user-1", http.MethodPost, "/api/notifications/mark-all-read", nil, nil, handler.MarkAllRead)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, decodeEnvelope(t, w).Success)

	feed, err := svc.Feed(context.Background(), "user-1", 10)
	require.NoError(t, err)
	require.Equal(t, 0, feed.UnreadCount)
}

func TestNotificationHandlerMarkReadNotFoundForOtherUser(t *testing.T) {
	handler, svc, _ := newTestHandler(t)

	dto, err := svc.Create(context.Background(), services.CreateNotificationInput{
		UserID: "user-1",
		Type:   "invoice.created",
		Title:  "mine",
	})
	require.NoError(t, err)

	params := gin.Params{{Key: "id", Value: dto.ID}}
	w := performRequest(t, "user-2", http.MethodPost, "/api/notifications/"+dto.ID+"/read", nil, params, handler.MarkRead)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationHandlerDelete(t *testing.T) {
	handler, svc, _ := newTestHandler(t)

	dto, err := svc.Create(context.Background(), services.CreateNotificationInput{
		UserID: "user-1",
		Type:   "invoice.created",
		Title:  "mine",
	})
	require.NoError(t, err)

	params := gin.Params{{Key: "id", Value: dto.ID}}
	w := performRequest(t, "user-1", http.MethodDelete, "/api/notifications/"+dto.ID, nil, params, handler.Delete)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(t, "user-1", http.MethodDelete, "/api/notifications/"+dto.ID, nil, params, handler.Delete)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationHandlerCreate(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	body, err := json.Marshal(map[string]any{
		"user_id": "user-1",
		"type":    "invoice.overdue",
		"title":   "Invoice #7 is overdue",
		"link":    "/invoices/7",
	})
	require.NoError(t, err)

	w := performRequest(t, "admin", http.MethodPost, "/api/notifications", body, nil, handler.Create)
	require.Equal(t, http.StatusCreated, w.Code)

	var dto services.NotificationDTO
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &dto))
	require.Equal(t, "user-1", dto.UserID)
	require.Equal(t, "/invoices/7", dto.Link)
}

func TestNotificationHandlerCreateValidatesPayload(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	body, err := json.Marshal(map[string]any{"user_id": "user-1"})
	require.NoError(t, err)

	w := performRequest(t, "admin", http.MethodPost, "/api/notifications", body, nil, handler.Create)
	require.Equal(t, http.StatusBadRequest, w.Code)

	envelope := decodeEnvelope(t, w)
	require.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
}
