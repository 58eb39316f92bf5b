package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetNotifications(c *gin.Context) {
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	list, err := h.notifications.List(ctx, actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := pathID(c, "id", "Notification not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	if err := h.notifications.MarkRead(ctx, actor(c), id); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "Notification marked as read")
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	n, err := h.notifications.MarkAllRead(ctx, actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read", "updated": n})
}
