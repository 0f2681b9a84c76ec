package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/smart-health-api/internal/middleware"
)

const feedLimit = 50

// ListNotifications returns the caller's latest feed entries; ?unread=true
// keeps only unread ones.
func (h *Handler) ListNotifications(c *gin.Context) {
	unread := c.Query("unread") == "true"
	list, err := h.feed.ListForUser(c.Request.Context(), middleware.CurrentUserID(c), unread, feedLimit)
	if err != nil {
		h.fail(c, err, "notification")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.feed.MarkRead(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id")); err != nil {
		h.fail(c, err, "notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.feed.MarkAllRead(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.fail(c, err, "notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}
