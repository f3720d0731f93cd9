package cmd

import (
	"time"

	"github.com/Togather-Foundation/dashlog/internal/config"
	"github.com/Togather-Foundation/dashlog/internal/emitter"
	"github.com/Togather-Foundation/dashlog/internal/identity"
	"github.com/rs/zerolog"
)

// newEmitter wires the Keycloak token source and claims-based username
// lookup into an emitter for cfg.
func newEmitter(cfg config.Config, logger zerolog.Logger) *emitter.Emitter {
	tokens := identity.NewKeycloakClient(cfg.Identity, logger)
	usernames := identity.ClaimsUsername{Fallback: cfg.Identity.Username}

	return emitter.New(emitter.Config{
		ServerURL: cfg.Sender.ServerURL,
		AppName:   cfg.Sender.AppName,
		Interval:  time.Duration(cfg.Sender.IntervalSeconds) * time.Second,
		Timeout:   cfg.Sender.RequestTimeout,
	}, tokens, usernames, logger)
}
