package db

import (
	"context"
	"fmt"
	"time"

	"github.com/sdss/catalogdb/pkg/catalogdb"
)

// minTokenLifetime is the remaining lifetime below which a token is
// considered too short for a long COPY.
const minTokenLifetime = 5 * time.Minute

// TokenBasedConnector implements the Connector interface for cloud providers
// that authenticate via short-lived tokens (AWS IAM, Azure Entra ID).
// The token is acquired from a TokenProvider and used as the PostgreSQL password.
type TokenBasedConnector struct {
	config        *catalogdb.ConnectionConfig
	tokenProvider TokenProvider
	providerName  string
	logger        catalogdb.Logger
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error/warning messages (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(config *catalogdb.ConnectionConfig, tokenProvider TokenProvider, providerName string) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		providerName:  providerName,
	}
}

// WithLogger sets the logger used for token expiry warnings.
func (c *TokenBasedConnector) WithLogger(logger catalogdb.Logger) *TokenBasedConnector {
	c.logger = logger
	return c
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (catalogdb.DBConnection, error) {
	token, expiresOn, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s token: %w: %w", c.providerName, catalogdb.ErrConnectionFailed, err)
	}

	if remaining := time.Until(expiresOn); remaining < minTokenLifetime {
		catalogdb.NewUserWarning("%s token expires in %v", c.providerName, remaining.Round(time.Second)).Emit(c.logger)
	}

	configWithToken := *c.config
	configWithToken.Password = token

	conn, err := connect(ctx, &configWithToken)
	if err != nil {
		return nil, err
	}
	return NewConnAdapter(conn, nil), nil
}
