package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"visage/services"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	ID             string `json:"_id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	FullName       string `json:"fullName"`
	ProfilePicture string `json:"profilePicture"`
	Token          string `json:"token"`
}

func newAuthResponse(s *services.Session) authResponse {
	return authResponse{
		ID:             s.User.ID.Hex(),
		Username:       s.User.Username,
		Email:          s.User.Email,
		FullName:       s.User.FullName,
		ProfilePicture: s.User.ProfilePicture,
		Token:          s.Token,
	}
}

// Register handles POST /api/users/register.
func (h *Handler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Invalid user data")
		return
	}

	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	session, err := h.users.Register(ctx, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newAuthResponse(session))
}

// Login handles POST /api/users/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	session, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newAuthResponse(session))
}
