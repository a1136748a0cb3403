package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// GoogleVerifier validates Google ID tokens issued for this client.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier returns a verifier that checks signature, expiry and audience.
func NewGoogleVerifier(clientID string) (GoogleVerifier, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, errors.New("GOOGLE_CLIENT_ID is empty")
	}
	return &googleVerifier{clientID: clientID}, nil
}

func (v *googleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, strings.TrimSpace(idToken), v.clientID)
	if err != nil {
		return nil, fmt.Errorf("idtoken.Validate: %w", err)
	}

	identity := &GoogleIdentity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		identity.Email = strings.TrimSpace(email)
	}
	if name, ok := payload.Claims["name"].(string); ok {
		identity.Name = strings.TrimSpace(name)
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		identity.EmailVerified = verified
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, errors.New("google token lacks subject or email")
	}
	return identity, nil
}
