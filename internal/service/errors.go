package service

import (
	"errors"
	"net/http"

	"github.com/spec-kit/incident-portal/internal/crm"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

// Messages shown to clients when a CRM call fails. The upstream body is never
// forwarded.
var upstreamMessages = map[string]string{
	crm.OpLogin:            "unable to sign in",
	crm.OpListStaff:        "unable to load staff",
	crm.OpAddStaff:         "unable to add staff member",
	crm.OpEditStaff:        "unable to update staff member",
	crm.OpDeleteStaff:      "unable to delete staff member",
	crm.OpFetchIncidents:   "unable to load incidents",
	crm.OpFetchIncident:    "unable to load incident",
	crm.OpUpdateIncident:   "unable to update incident",
	crm.OpDeleteIncident:   "unable to delete incident",
	crm.OpSubmitIncident:   "unable to submit incident",
	crm.OpConfirmIncident:  "unable to confirm incident",
	crm.OpRetrieveMessages: "unable to load messages",
	crm.OpPostMessage:      "unable to send message",
}

var notFoundResources = map[string]string{
	crm.OpEditStaff:        "staff member",
	crm.OpDeleteStaff:      "staff member",
	crm.OpConfirmIncident:  "incident draft",
	crm.OpRetrieveMessages: "incident",
	crm.OpPostMessage:      "incident",
}

// mapCRMError turns a crm failure into the DomainError rendered to clients.
func mapCRMError(op string, err error) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	message, ok := upstreamMessages[op]
	if !ok {
		message = "upstream request failed"
	}

	if errors.Is(err, crm.ErrNotConfigured) {
		return apperrors.NewUpstreamError("UPSTREAM_NOT_CONFIGURED", message, http.StatusServiceUnavailable, err)
	}

	switch status := crm.StatusOf(err); {
	case op == crm.OpLogin && (status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusNotFound):
		return &apperrors.DomainError{Code: "UNAUTHORIZED", Message: "invalid email or password", HTTPStatus: http.StatusUnauthorized, Err: err}
	case status == http.StatusBadRequest:
		return &apperrors.DomainError{Code: "VALIDATION_FAILED", Message: message, HTTPStatus: http.StatusBadRequest, Err: err}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.NewUpstreamError("UPSTREAM_UNAUTHORIZED", message, http.StatusBadGateway, err)
	case status == http.StatusNotFound:
		resource, ok := notFoundResources[op]
		if !ok {
			resource = "incident"
		}
		return apperrors.NewNotFound(resource, nil)
	case status == http.StatusConflict:
		return &apperrors.DomainError{Code: "CONFLICT", Message: message, HTTPStatus: http.StatusConflict, Err: err}
	default:
		return apperrors.NewUpstreamError("UPSTREAM_UNAVAILABLE", message, http.StatusBadGateway, err)
	}
}
