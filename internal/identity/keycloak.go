// Package identity obtains and inspects tokens issued by the deployment's
// Keycloak realm.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Togather-Foundation/dashlog/internal/config"
	"github.com/Togather-Foundation/dashlog/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

var (
	ErrMissingCredentials = errors.New("missing required environment variables: DEURL, USERNAME, PASSWORD")
	ErrInvalidToken       = errors.New("invalid token")
)

// TokenPair is the result of one password grant. IDToken equals AccessToken
// when the provider returned no id_token.
type TokenPair struct {
	AccessToken string
	IDToken     string
}

// KeycloakClient performs resource-owner password grants against a realm.
type KeycloakClient struct {
	cfg        config.IdentityConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewKeycloakClient(cfg config.IdentityConfig, logger zerolog.Logger) *KeycloakClient {
	return &KeycloakClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With().Str("component", "identity").Logger(),
	}
}

// WithHTTPClient replaces the client used for token requests.
func (c *KeycloakClient) WithHTTPClient(client *http.Client) *KeycloakClient {
	c.httpClient = client
	return c
}

// Issuer is the realm URL, e.g. https://auth-example.host/auth/realms/dash.
func (c *KeycloakClient) Issuer() string {
	return Issuer(c.cfg)
}

// TokenURL is the realm's token endpoint, or the configured override.
func (c *KeycloakClient) TokenURL() string {
	if c.cfg.TokenURL != "" {
		return c.cfg.TokenURL
	}
	return c.Issuer() + "/protocol/openid-connect/token"
}

// Issuer derives the realm URL from the identity configuration.
func Issuer(cfg config.IdentityConfig) string {
	return fmt.Sprintf("https://auth-%s/auth/realms/%s", cfg.DEURL, cfg.Realm)
}

// Acquire requests a fresh token pair. Missing credentials fail with
// ErrMissingCredentials before any request is made. Failures are logged here
// and not retried.
func (c *KeycloakClient) Acquire(ctx context.Context) (TokenPair, error) {
	if c.cfg.DEURL == "" || c.cfg.Username == "" || c.cfg.Password == "" {
		metrics.TokenRequestsTotal.WithLabelValues("missing_config").Inc()
		c.logger.Error().Err(ErrMissingCredentials).Msg("cannot request tokens")
		return TokenPair{}, ErrMissingCredentials
	}

	conf := &oauth2.Config{
		ClientID: c.cfg.ClientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.TokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{"openid"},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := conf.PasswordCredentialsToken(ctx, c.cfg.Username, c.cfg.Password)
	if err != nil {
		metrics.TokenRequestsTotal.WithLabelValues("failure").Inc()
		c.logger.Error().Err(err).Str("token_url", conf.Endpoint.TokenURL).Msg("error getting tokens")
		return TokenPair{}, fmt.Errorf("password grant: %w", err)
	}

	pair := TokenPair{AccessToken: tok.AccessToken, IDToken: tok.AccessToken}
	if id, ok := tok.Extra("id_token").(string); ok && id != "" {
		pair.IDToken = id
	}
	metrics.TokenRequestsTotal.WithLabelValues("success").Inc()
	return pair, nil
}
