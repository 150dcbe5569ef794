package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"ketotrack/internal/config"
)

// OIDC signs users in through an OpenID Connect provider. The verified
// subject claim becomes the user id.
type OIDC struct {
	oauth2   oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewOIDC discovers the issuer and prepares the code flow.
func NewOIDC(ctx context.Context, cfg config.OIDCConfig) (*OIDC, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	return &OIDC{
		oauth2: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// AuthCodeURL returns the provider login URL for state.
func (o *OIDC) AuthCodeURL(state string) string {
	return o.oauth2.AuthCodeURL(state)
}

// Exchange trades an authorization code for a verified user id.
func (o *OIDC) Exchange(ctx context.Context, code string) (string, error) {
	token, err := o.oauth2.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange token: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return "", errors.New("no id_token in token response")
	}
	return o.Verify(ctx, rawIDToken)
}

// Verify checks a raw ID token and returns its subject.
func (o *OIDC) Verify(ctx context.Context, rawIDToken string) (string, error) {
	idToken, err := o.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", fmt.Errorf("verify id_token: %w", err)
	}
	var claims struct {
		Sub string `json:"sub"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", fmt.Errorf("parse claims: %w", err)
	}
	if claims.Sub == "" {
		return "", errors.New("id_token has no subject")
	}
	return claims.Sub, nil
}

// GenerateState returns a random OAuth2 state value.
func GenerateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
