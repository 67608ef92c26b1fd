package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub-server-go/internal/features/user"
	"github.com/studyhub/studyhub-server-go/internal/utils/jwt"
	"github.com/studyhub/studyhub-server-go/pkg/response"
	"github.com/studyhub/studyhub-server-go/pkg/types"
)

const userContextKey = "authenticated_user"

// ContextUser is the authenticated identity handlers read from the request
// context.
type ContextUser struct {
	ID          uuid.UUID
	Email       string
	FirstName   string
	LastName    string
	AccountType types.AccountType
}

// Authenticate validates the bearer token (or the token cookie) and loads the
// account into the request context. The DB lookup rejects tokens for deleted
// accounts.
func Authenticate(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Token is missing", nil)
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(secret, tokenString)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Token is invalid", err.Error())
			c.Abort()
			return
		}

		account, err := user.Get(db, claims.UserID)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Token is invalid", nil)
			c.Abort()
			return
		}

		SetUser(c, ContextUser{
			ID:          account.ID,
			Email:       account.Email,
			FirstName:   account.FirstName,
			LastName:    account.LastName,
			AccountType: account.AccountType,
		})

		c.Next()
	}
}

// RequireRoles restricts a route to the given account types. Must run after
// Authenticate.
func RequireRoles(roles ...types.AccountType) gin.HandlerFunc {
	return func(c *gin.Context) {
		usr, ok := GetUserFromContext(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
			c.Abort()
			return
		}

		for _, role := range roles {
			if usr.AccountType == role {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "This is a protected route", nil)
		c.Abort()
	}
}

// SetUser stores the authenticated user on the request context.
func SetUser(c *gin.Context, usr ContextUser) {
	c.Set(userContextKey, usr)
}

// GetUserFromContext returns the authenticated user set by Authenticate.
func GetUserFromContext(c *gin.Context) (ContextUser, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return ContextUser{}, false
	}

	usr, ok := value.(ContextUser)
	return usr, ok
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}

	return ""
}
