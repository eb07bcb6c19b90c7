package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const (
	// ContextKeyOwnerID is the key for the session owner in the Gin context.
	ContextKeyOwnerID = "owner_id"
	// ContextKeyFirebaseUID is set only for Firebase-authenticated requests.
	ContextKeyFirebaseUID = "firebase_uid"

	// GuestHeader carries the browser-generated id when Firebase is off.
	GuestHeader = "X-Guest-Id"
)

var guestIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// TokenVerifier checks Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthMiddleware resolves the owner of every request: the Firebase UID when
// a project is configured, otherwise the guest id header.
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates the middleware. An empty projectID selects
// guest mode. credentialsFile is optional; without it the Admin SDK falls
// back to application default credentials.
func NewAuthMiddleware(ctx context.Context, projectID, credentialsFile string) (*AuthMiddleware, error) {
	if projectID == "" {
		log.Warn().Msg("FIREBASE_PROJECT_ID not set, using guest identities")
		return &AuthMiddleware{}, nil
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{verifier: client}, nil
}

// NewAuthMiddlewareWithVerifier is used by tests and alternate identity
// providers. A nil verifier selects guest mode.
func NewAuthMiddlewareWithVerifier(v TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: v}
}

// Authenticate is the Gin middleware handler
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.verifier == nil {
			am.guest(c)
			return
		}

		scheme, idToken, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(idToken) == "" {
			unauthorized(c, "Missing or malformed Authorization header")
			return
		}

		token, err := am.verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(idToken))
		if err != nil {
			log.Warn().Err(err).Msg("Failed to verify Firebase token")
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(ContextKeyFirebaseUID, token.UID)
		c.Set(ContextKeyOwnerID, "user:"+token.UID)
		c.Next()
	}
}

func (am *AuthMiddleware) guest(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader(GuestHeader))
	if !guestIDPattern.MatchString(id) {
		unauthorized(c, "Missing or invalid "+GuestHeader+" header")
		return
	}
	c.Set(ContextKeyOwnerID, "guest:"+id)
	c.Next()
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": "unauthorized"})
}

// GetOwnerID extracts the owner from the Gin context
func GetOwnerID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyOwnerID)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
