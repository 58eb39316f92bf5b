package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"visage/middleware"
	"visage/services"
)

const (
	storeTimeout = 10 * time.Second
	mediaTimeout = 30 * time.Second

	serverErrorMessage = "Server error"
)

func statusOf(kind services.Kind) int {
	switch kind {
	case services.KindValidation, services.KindConflict:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// fail writes err as {message}. Internal failures are logged and hidden.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusOf(services.KindOf(err))
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		message(c, status, serverErrorMessage)
		return
	}
	message(c, status, err.Error())
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// pathID parses an ObjectID route parameter. Malformed ids cannot name an
// existing document, so they answer 404 with notFound.
func pathID(c *gin.Context, param, notFound string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		message(c, http.StatusNotFound, notFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

// actor returns the authenticated user. Routes calling it sit behind
// RequireAuth.
func actor(c *gin.Context) primitive.ObjectID {
	id, _ := middleware.CurrentUserID(c)
	return id
}

func withTimeout(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}
