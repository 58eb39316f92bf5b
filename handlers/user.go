package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"visage/services"
)

type profileResponse struct {
	authResponse
	Bio       string `json:"bio"`
	Website   string `json:"website"`
	IsPrivate bool   `json:"isPrivate"`
}

func (h *Handler) GetProfile(c *gin.Context) {
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	user, err := h.users.Profile(ctx, actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req services.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	// A new picture goes through the media host.
	ctx, cancel := withTimeout(c, mediaTimeout)
	defer cancel()

	session, err := h.users.UpdateProfile(ctx, actor(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse{
		authResponse: newAuthResponse(session),
		Bio:          session.User.Bio,
		Website:      session.User.Website,
		IsPrivate:    session.User.IsPrivate,
	})
}

func (h *Handler) Follow(c *gin.Context) {
	target, ok := pathID(c, "id", "User not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	if err := h.users.Follow(ctx, actor(c), target); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "User followed successfully")
}

func (h *Handler) Unfollow(c *gin.Context) {
	target, ok := pathID(c, "id", "User not found")
	if !ok {
		return
	}
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	if err := h.users.Unfollow(ctx, actor(c), target); err != nil {
		h.fail(c, err)
		return
	}
	message(c, http.StatusOK, "User unfollowed successfully")
}

func (h *Handler) GetUserByUsername(c *gin.Context) {
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	user, err := h.users.ByUsername(ctx, c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) SearchUsers(c *gin.Context) {
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	users, err := h.users.Search(ctx, c.Query("query"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) SuggestedUsers(c *gin.Context) {
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	users, err := h.users.Suggested(ctx, actor(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
