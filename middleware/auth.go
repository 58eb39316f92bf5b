package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"visage/auth"
	"visage/models"
	"visage/services"
)

const userIDKey = "userId"

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// UserLookup confirms the token's account still exists.
type UserLookup interface {
	Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Auth struct {
	tokens TokenParser
	users  UserLookup
	log    *zap.Logger
}

func NewAuth(tokens TokenParser, users UserLookup, log *zap.Logger) *Auth {
	return &Auth{tokens: tokens, users: users, log: log}
}

// RequireAuth aborts with 401 unless the request carries a valid bearer
// token for an existing account.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// CORS preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c, "Not authorized, no token")
			return
		}
		userID, msg := a.authenticate(c, token)
		if msg != "" {
			abortUnauthorized(c, msg)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// OptionalAuth attaches the principal when a valid token is present and
// lets the request through either way.
func (a *Auth) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c.GetHeader("Authorization")); token != "" {
			if userID, msg := a.authenticate(c, token); msg == "" {
				c.Set(userIDKey, userID)
			}
		}
		c.Next()
	}
}

// authenticate returns the user id of token, or a client-facing message
// explaining why it was rejected.
func (a *Auth) authenticate(c *gin.Context, token string) (primitive.ObjectID, string) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return primitive.NilObjectID, "Not authorized, token failed"
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, "Not authorized, token failed"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	if _, err := a.users.Profile(ctx, userID); err != nil {
		if services.KindOf(err) != services.KindNotFound {
			a.log.Error("auth user lookup failed", zap.String("user", userID.Hex()), zap.Error(err))
		}
		return primitive.NilObjectID, "Not authorized, user not found"
	}
	return userID, ""
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
}

// CurrentUserID returns the authenticated user, if any.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}
