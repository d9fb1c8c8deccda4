package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mhartley/notifeed/internal/middleware"
	"github.com/mhartley/notifeed/internal/services"
	"github.com/mhartley/notifeed/pkg/errors"
	"github.com/mhartley/notifeed/pkg/response"
)

// NotificationHandler exposes HTTP endpoints for the notification feed.
type NotificationHandler struct {
	service   *services.NotificationService
	feedLimit int
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(db *gorm.DB, feedLimit int) (*NotificationHandler, error) {
	service, err := services.NewNotificationService(db)
	if err != nil {
		return nil, err
	}
	return &NotificationHandler{
		service:   service,
		feedLimit: feedLimit,
	}, nil
}

// Feed returns the unread count plus recent notifications for the current user.
func (h *NotificationHandler) Feed(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	limit := parseIntQuery(c, "limit", h.feedLimit)

	feed, err := h.service.Feed(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, feed)
}

// MarkRead toggles a notification to read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	h.updateReadState(c, true)
}

// MarkUnread toggles a notification to unread.
func (h *NotificationHandler) MarkUnread(c *gin.Context) {
	h.updateReadState(c, false)
}

func (h *NotificationHandler) updateReadState(c *gin.Context, read bool) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	var dto *services.NotificationDTO
	var err error
	if read {
		dto, err = h.service.MarkRead(c.Request.Context(), userID, id)
	} else {
		dto, err = h.service.MarkUnread(c.Request.Context(), userID, id)
	}

	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// Delete removes a notification.
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// MarkAllRead marks all notifications read. Any 2xx completion is a signal
// for the panel to reconcile with a fresh fetch.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.service.MarkAllRead(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

// Create allows internal systems to create a notification (primarily for tests/admin).
func (h *NotificationHandler) Create(c *gin.Context) {
	var payload struct {
		UserID   string         `json:"user_id" validate:"required"`
		Type     string         `json:"type" validate:"required"`
		Title    string         `json:"title" validate:"required,max=255"`
		Message  string         `json:"message"`
		Severity string         `json:"severity"`
		Link     string         `json:"link"`
		Metadata map[string]any `json:"metadata"`
		IsRead   bool           `json:"is_read"`
	}

	if !bindAndValidate(c, &payload) {
		return
	}

	dto, err := h.service.Create(c.Request.Context(), services.CreateNotificationInput{
		UserID:   payload.UserID,
		Type:     payload.Type,
		Title:    payload.Title,
		Message:  payload.Message,
		Severity: payload.Severity,
		Link:     payload.Link,
		Metadata: payload.Metadata,
		IsRead:   payload.IsRead,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, dto)
}
