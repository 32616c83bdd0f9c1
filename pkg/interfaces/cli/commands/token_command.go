package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vsinha/divmrp/pkg/interfaces/httpapi"
)

// TokenConfig describes the caller a token is issued for
type TokenConfig struct {
	Secret    string
	Issuer    string
	UserID    string
	Name      string
	Divisions []int64
	TTL       time.Duration
	Out       io.Writer
}

// TokenCommand prints a signed API token
type TokenCommand struct {
	config TokenConfig
}

func NewTokenCommand(config TokenConfig) *TokenCommand {
	return &TokenCommand{config: config}
}

func (c *TokenCommand) Execute(_ context.Context) error {
	if c.config.Secret == "" {
		return fmt.Errorf("validation error: a signing secret is required (-secret or JWT_SECRET)")
	}
	if c.config.UserID == "" {
		return fmt.Errorf("validation error: -user is required")
	}
	ttl := c.config.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	claims := httpapi.Claims{
		UserID:    c.config.UserID,
		Name:      c.config.Name,
		Divisions: c.config.Divisions,
	}
	claims.Issuer = c.config.Issuer
	token, err := httpapi.SignToken(c.config.Secret, claims, ttl)
	if err != nil {
		return fmt.Errorf("error signing token: %w", err)
	}

	out := c.config.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, token)
	return nil
}
