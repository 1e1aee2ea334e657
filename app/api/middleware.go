package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joefazee/toto/internal/security"
)

const (
	// AuthPayloadKey is the gin context key holding the verified token payload.
	AuthPayloadKey = "auth_payload"
)

// Authenticate verifies the bearer token and stores its payload in the
// request context.
func Authenticate(maker security.Maker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		fields := strings.Fields(header)
		if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		payload, err := maker.VerifyToken(fields[1])
		if err != nil {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}
		if payload.Scope != security.TokenScopeAccess {
			UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set(AuthPayloadKey, payload)
		c.Next()
	}
}

// ContextUserID extracts the authenticated user's account id from the
// request context.
func ContextUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(AuthPayloadKey)
	if !exists {
		return uuid.Nil, false
	}
	payload, ok := value.(*security.Payload)
	if !ok {
		return uuid.Nil, false
	}
	return payload.UserID, true
}

// GrantPermissions stores the permissions held by configured operator
// accounts in the request context so Can can check them.
func GrantPermissions(operators map[uuid.UUID][]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := ContextUserID(c)
		if !ok {
			c.Next()
			return
		}
		if permissions, found := operators[userID]; found {
			c.Set("permissions", permissions)
		}
		c.Next()
	}
}

func Can(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		permissionsValue, exists := c.Get("permissions")
		if !exists {
			ForbiddenResponse(c, "Access Denied: Permissions not found in context")
			c.Abort()
			return
		}

		permissions, ok := permissionsValue.([]string)
		if !ok {
			ForbiddenResponse(c, "Access Denied: Invalid permissions data in context")
			c.Abort()
			return
		}

		for _, p := range permissions {
			if p == permission {
				c.Next()
				return
			}
		}

		ForbiddenResponse(c, "Access Denied: You do not have the required permission")
		c.Abort()
	}
}
