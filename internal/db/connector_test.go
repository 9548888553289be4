package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sdss/catalogdb/pkg/catalogdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnector(t *testing.T) {
	tests := []struct {
		name     string
		config   *catalogdb.ConnectionConfig
		wantType any
		wantErr  error
	}{
		{
			name:     "standard",
			config:   &catalogdb.ConnectionConfig{Host: "localhost", Port: 5432, AuthMethod: catalogdb.AuthMethodStandard},
			wantType: &StandardConnector{},
		},
		{
			name: "aws",
			config: &catalogdb.ConnectionConfig{
				Host: "catalog.rds.amazonaws.com", Port: 5432, Username: "sdss",
				AuthMethod: catalogdb.AuthMethodAWSIAM, AWSRegion: "us-west-2",
			},
			wantType: &TokenBasedConnector{},
		},
		{
			name: "aws without region",
			config: &catalogdb.ConnectionConfig{
				Host: "catalog.rds.amazonaws.com", Port: 5432, Username: "sdss",
				AuthMethod: catalogdb.AuthMethodAWSIAM,
			},
			wantErr: catalogdb.ErrInvalidConfig,
		},
		{
			name: "google",
			config: &catalogdb.ConnectionConfig{
				Username: "sdss@project.iam", Database: "sdss5db",
				AuthMethod: catalogdb.AuthMethodGoogleIAM, GoogleInstance: "sdss:us-central1:catalog",
			},
			wantType: &GoogleCloudSQLConnector{},
		},
		{
			name:    "google without instance",
			config:  &catalogdb.ConnectionConfig{Username: "sdss", AuthMethod: catalogdb.AuthMethodGoogleIAM},
			wantErr: catalogdb.ErrInvalidConfig,
		},
		{
			name:    "unknown method",
			config:  &catalogdb.ConnectionConfig{AuthMethod: catalogdb.AuthMethod(99)},
			wantErr: catalogdb.ErrUnsupportedAuthMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connector, err := NewConnector(tt.config)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, connector)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, connector)
		})
	}
}

func TestNewConnector_SatisfiesFactory(t *testing.T) {
	var factory catalogdb.ConnectorFactory = NewConnector
	assert.NotNil(t, factory)
}

type stubTokenProvider struct {
	token     string
	expiresOn time.Time
	err       error
}

func (p *stubTokenProvider) GetToken(context.Context) (string, time.Time, error) {
	return p.token, p.expiresOn, p.err
}

func (p *stubTokenProvider) String() string { return "stub" }

func TestTokenBasedConnector_TokenFailure(t *testing.T) {
	tokenErr := errors.New("credentials expired")
	connector := NewTokenBasedConnector(
		&catalogdb.ConnectionConfig{Host: "localhost", Port: 5432},
		&stubTokenProvider{err: tokenErr},
		"AWS IAM",
	)

	conn, err := connector.Connect(context.Background())
	assert.Nil(t, conn)
	assert.ErrorIs(t, err, tokenErr)
	assert.ErrorIs(t, err, catalogdb.ErrConnectionFailed)
	assert.Contains(t, err.Error(), "AWS IAM")
}

func TestNewAWSIAMTokenProvider_Validation(t *testing.T) {
	tests := []struct {
		name                       string
		endpoint, region, username string
		wantErr                    bool
	}{
		{"valid", "host:5432", "us-west-2", "sdss", false},
		{"missing endpoint", "", "us-west-2", "sdss", true},
		{"missing region", "host:5432", "", "sdss", true},
		{"missing username", "host:5432", "us-west-2", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewAWSIAMTokenProvider(tt.endpoint, tt.region, tt.username)
			if tt.wantErr {
				assert.ErrorIs(t, err, catalogdb.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, p.String(), "region=us-west-2")
		})
	}
}

func TestNewAzureServicePrincipalProvider_RequiresAllCredentials(t *testing.T) {
	_, err := NewAzureServicePrincipalProvider("tenant", "client", "")
	assert.ErrorIs(t, err, catalogdb.ErrInvalidConfig)
}
