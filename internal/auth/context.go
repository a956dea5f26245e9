package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID = "firebase_uid"
	CtxEmail  = "email"
)

// UserID extracts the authenticated Firebase UID from the Gin context.
// Empty for anonymous requests on optional-auth routes.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

// UserEmail extracts the token email claim, when present.
func UserEmail(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxEmail))
}

// UserIDPtr returns the UID as a nullable pointer for telemetry writes.
func UserIDPtr(c *gin.Context) *string {
	uid := UserID(c)
	if uid == "" {
		return nil
	}
	return &uid
}
