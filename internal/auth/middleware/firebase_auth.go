package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

// ProfileEnsurer upserts the local profile row for an authenticated user so
// joins against profiles always resolve.
type ProfileEnsurer interface {
	Ensure(ctx context.Context, id, email string, fullName *string) error
}

// RequireUser validates Firebase ID tokens and rejects anonymous requests.
// On success the UID and email claims land in the Gin context and the
// profile row is refreshed.
func RequireUser(authClient *auth.Client, profiles ProfileEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			c.Abort()
			return
		}

		decodedToken, err := authClient.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		setUser(c, decodedToken, profiles)
		c.Next()
	}
}

// OptionalUser admits anonymous requests but resolves the user when a valid
// token is attached. Used on public read routes where ownership still
// matters for the response shape.
func OptionalUser(authClient *auth.Client, profiles ProfileEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		decodedToken, err := authClient.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			// Bad token on an optional route degrades to anonymous.
			c.Next()
			return
		}

		setUser(c, decodedToken, profiles)
		c.Next()
	}
}

func setUser(c *gin.Context, token *auth.Token, profiles ProfileEnsurer) {
	c.Set("firebase_uid", token.UID)

	email, _ := token.Claims["email"].(string)
	if email != "" {
		c.Set("email", email)
	}

	var fullName *string
	if name, ok := token.Claims["name"].(string); ok && name != "" {
		fullName = &name
	}

	if profiles != nil {
		if err := profiles.Ensure(c.Request.Context(), token.UID, email, fullName); err != nil {
			log.Printf("[warn] operation=ensure_profile user=%s error=%v", token.UID, err)
		}
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
