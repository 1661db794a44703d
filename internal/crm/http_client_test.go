package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-portal/internal/config"
	"github.com/spec-kit/incident-portal/internal/domain"
)

func newTestClient(endpoints config.CRMEndpoints) *HTTPClient {
	return NewHTTPClient(config.CRMConfig{TimeoutSeconds: 2, Endpoints: endpoints}, zap.NewNop())
}

func TestHTTPClientNotConfigured(t *testing.T) {
	c := newTestClient(config.CRMEndpoints{})

	_, err := c.FetchIncidents(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.Equal(t, 0, StatusOf(err))
}

func TestHTTPClientFetchIncidentsDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"value":[
			{"incidentId":"INC-1","title":"Printer jam","status":"In-progress","severity":"high","category":"it","createdOn":"2026-09-01T09:00:00Z"},
			{"incidentId":"INC-2","title":"Odd","status":"Escalated"}
		]}`))
	}))
	defer srv.Close()

	c := newTestClient(config.CRMEndpoints{FetchIncidents: srv.URL})
	incidents, err := c.FetchIncidents(context.Background())
	require.NoError(t, err)
	require.Len(t, incidents, 2)

	assert.Equal(t, domain.StatusInProgress, incidents[0].Status)
	assert.Equal(t, domain.SeverityHigh, incidents[0].Severity)
	assert.Equal(t, domain.CategoryIT, incidents[0].Category)
	assert.Equal(t, 2026, incidents[0].CreatedAt.Year())
	assert.Equal(t, domain.IncidentStatus("Escalated"), incidents[1].Status)
}

func TestHTTPClientSurfacesUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no such incident"}`))
	}))
	defer srv.Close()

	c := newTestClient(config.CRMEndpoints{FetchIncident: srv.URL})
	_, err := c.FetchIncident(context.Background(), "INC-9")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var crmErr *Error
	require.ErrorAs(t, err, &crmErr)
	assert.Equal(t, OpFetchIncident, crmErr.Op)
	assert.Contains(t, crmErr.Body, "no such incident")
}

func TestHTTPClientUpdateSendsOnlyChangedFields(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(config.CRMEndpoints{UpdateIncident: srv.URL})
	status := domain.StatusResolved
	require.NoError(t, c.UpdateIncident(context.Background(), "INC-1", IncidentUpdate{Status: &status}))

	assert.Equal(t, map[string]any{"incidentId": "INC-1", "status": "Resolved"}, got)
}

func TestHTTPClientSubmitIncident(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Laptop broken", req.Title)
		_, _ = w.Write([]byte(`{
			"incidentId":"INC-77",
			"classification":{"category":"IT","severity":"Medium","summary":"Laptop fault","email":"Hi"},
			"staff_assignment":{"staffId":"stf-it-1","name":"Omar Ortiz","email":"omar@portal.example"}
		}`))
	}))
	defer srv.Close()

	c := newTestClient(config.CRMEndpoints{SubmitIncident: srv.URL})
	res, err := c.SubmitIncident(context.Background(), Submission{Title: "Laptop broken"})
	require.NoError(t, err)
	assert.Equal(t, "INC-77", res.DraftID)
	assert.Equal(t, "Hi", res.Classification.EmailText)
	assert.Equal(t, "stf-it-1", res.StaffAssignment.StaffID)
}

func TestHTTPClientPostMessageEchoesOnEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(config.CRMEndpoints{PostMessage: srv.URL})
	msg := domain.ChatMessage{IncidentID: "INC-1", Message: "hello", SenderID: "emp-1"}
	posted, err := c.PostMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, msg, *posted)
}

func TestHTTPClientListStaffSplitsSkillset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"value":[{"staffId":"s1","name":"A","skillset":"VPN, Networking ,","availability":"busy","role":"Support"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(config.CRMEndpoints{ListStaff: srv.URL})
	staff, err := c.ListStaff(context.Background())
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, []string{"VPN", "Networking"}, staff[0].Skillset)
	assert.Equal(t, domain.AvailabilityBusy, staff[0].Availability)
	assert.Equal(t, domain.RoleSupport, staff[0].Role)
}
