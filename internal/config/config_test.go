package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsToMemoryCRMWithoutEndpoints(t *testing.T) {
	t.Setenv("CRM_MODE", "")
	t.Setenv("SUBMIT_INCIDENT_API_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, CRMModeMemory, cfg.CRM.Mode)
	assert.Equal(t, 8, cfg.Policy.MinPasswordLength)
	assert.Equal(t, 30*time.Second, cfg.Cache.StaffTTL())
}

func TestLoadSelectsHTTPWhenAnEndpointIsSet(t *testing.T) {
	t.Setenv("CRM_MODE", "")
	t.Setenv("SUBMIT_INCIDENT_API_URL", "https://crm.example.com/submit")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, CRMModeHTTP, cfg.CRM.Mode)
	assert.Equal(t, "https://crm.example.com/submit", cfg.CRM.Endpoints.SubmitIncident)
}

func TestLoadRejectsUnknownCRMMode(t *testing.T) {
	t.Setenv("CRM_MODE", "odata")

	_, err := Load()
	assert.Error(t, err)
}

func TestRequestTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
	assert.Equal(t, 5*time.Second, AppConfig{RequestTimeoutSeconds: 5}.RequestTimeout())
	assert.Equal(t, 20*time.Second, CRMConfig{}.Timeout())
}
