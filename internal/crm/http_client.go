package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-portal/internal/config"
	"github.com/spec-kit/incident-portal/internal/domain"
)

const maxErrorBody = 4 << 10

// HTTPClient calls the CRM over HTTP, one request per operation. It does not
// retry, batch or cache.
type HTTPClient struct {
	endpoints config.CRMEndpoints
	client    *http.Client
	logger    *zap.Logger
}

// NewHTTPClient builds a client with the configured per-call timeout.
func NewHTTPClient(cfg config.CRMConfig, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		endpoints: cfg.Endpoints,
		client:    &http.Client{Timeout: cfg.Timeout()},
		logger:    logger,
	}
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	var resp loginResponse
	if err := c.do(ctx, OpLogin, http.MethodPost, c.endpoints.Login, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &domain.Identity{
		ID:         resp.UserID,
		Name:       resp.Name,
		Email:      resp.Email,
		Role:       lenientRole(resp.Role),
		Department: resp.Department,
	}, nil
}

func (c *HTTPClient) ListStaff(ctx context.Context) ([]domain.Staff, error) {
	var resp listEnvelope[staffPayload]
	if err := c.do(ctx, OpListStaff, http.MethodGet, c.endpoints.ListStaff, nil, &resp); err != nil {
		return nil, err
	}
	staff := make([]domain.Staff, 0, len(resp.Value))
	for _, p := range resp.Value {
		staff = append(staff, p.toDomain())
	}
	return staff, nil
}

func (c *HTTPClient) AddStaff(ctx context.Context, input StaffInput) (*domain.Staff, error) {
	var resp staffPayload
	if err := c.do(ctx, OpAddStaff, http.MethodPost, c.endpoints.AddStaff, staffPayloadFrom("", input), &resp); err != nil {
		return nil, err
	}
	staff := resp.toDomain()
	return &staff, nil
}

func (c *HTTPClient) EditStaff(ctx context.Context, staffID string, input StaffInput) (*domain.Staff, error) {
	var resp staffPayload
	if err := c.do(ctx, OpEditStaff, http.MethodPost, c.endpoints.EditStaff, staffPayloadFrom(staffID, input), &resp); err != nil {
		return nil, err
	}
	staff := resp.toDomain()
	if staff.ID == "" {
		staff.ID = staffID
	}
	return &staff, nil
}

func (c *HTTPClient) DeleteStaff(ctx context.Context, staffID string) error {
	return c.do(ctx, OpDeleteStaff, http.MethodPost, c.endpoints.DeleteStaff, staffIDRequest{StaffID: staffID}, nil)
}

func (c *HTTPClient) FetchIncidents(ctx context.Context) ([]domain.Incident, error) {
	var resp listEnvelope[incidentPayload]
	if err := c.do(ctx, OpFetchIncidents, http.MethodGet, c.endpoints.FetchIncidents, nil, &resp); err != nil {
		return nil, err
	}
	incidents := make([]domain.Incident, 0, len(resp.Value))
	for _, p := range resp.Value {
		incidents = append(incidents, p.toDomain())
	}
	return incidents, nil
}

func (c *HTTPClient) FetchIncident(ctx context.Context, incidentID string) (*domain.Incident, error) {
	var resp incidentPayload
	if err := c.do(ctx, OpFetchIncident, http.MethodPost, c.endpoints.FetchIncident, incidentIDRequest{IncidentID: incidentID}, &resp); err != nil {
		return nil, err
	}
	if resp.IncidentID == "" {
		return nil, notFound(OpFetchIncident)
	}
	incident := resp.toDomain()
	return &incident, nil
}

func (c *HTTPClient) UpdateIncident(ctx context.Context, incidentID string, update IncidentUpdate) error {
	return c.do(ctx, OpUpdateIncident, http.MethodPost, c.endpoints.UpdateIncident, updateRequestFrom(incidentID, update), nil)
}

func (c *HTTPClient) DeleteIncident(ctx context.Context, incidentID string) error {
	return c.do(ctx, OpDeleteIncident, http.MethodPost, c.endpoints.DeleteIncident, incidentIDRequest{IncidentID: incidentID}, nil)
}

func (c *HTTPClient) SubmitIncident(ctx context.Context, s Submission) (*SubmitResult, error) {
	req := submitRequest{
		Title:         s.Title,
		Description:   s.Description,
		ReporterID:    s.ReporterID,
		ReporterName:  s.ReporterName,
		ReporterEmail: s.ReporterEmail,
	}
	var resp submitResponse
	if err := c.do(ctx, OpSubmitIncident, http.MethodPost, c.endpoints.SubmitIncident, req, &resp); err != nil {
		return nil, err
	}
	return &SubmitResult{
		DraftID:         resp.IncidentID,
		Classification:  resp.Classification.toDomain(),
		StaffAssignment: resp.StaffAssignment.toDomain(),
	}, nil
}

func (c *HTTPClient) ConfirmIncident(ctx context.Context, conf Confirmation) (*domain.Incident, error) {
	req := confirmRequest{
		IncidentID:      conf.DraftID,
		Title:           conf.Submission.Title,
		Description:     conf.Submission.Description,
		ReporterID:      conf.Submission.ReporterID,
		ReporterName:    conf.Submission.ReporterName,
		ReporterEmail:   conf.Submission.ReporterEmail,
		Classification:  classificationPayloadFrom(conf.Classification),
		StaffAssignment: assignmentPayloadFrom(conf.StaffAssignment),
	}
	var resp incidentPayload
	if err := c.do(ctx, OpConfirmIncident, http.MethodPost, c.endpoints.ConfirmIncident, req, &resp); err != nil {
		return nil, err
	}
	incident := resp.toDomain()
	if incident.ID == "" {
		incident.ID = conf.DraftID
	}
	return &incident, nil
}

func (c *HTTPClient) RetrieveMessages(ctx context.Context, incidentID string) ([]domain.ChatMessage, error) {
	var resp listEnvelope[chatPayload]
	if err := c.do(ctx, OpRetrieveMessages, http.MethodPost, c.endpoints.RetrieveMessages, incidentIDRequest{IncidentID: incidentID}, &resp); err != nil {
		return nil, err
	}
	msgs := make([]domain.ChatMessage, 0, len(resp.Value))
	for _, p := range resp.Value {
		msgs = append(msgs, p.toDomain())
	}
	return msgs, nil
}

func (c *HTTPClient) PostMessage(ctx context.Context, msg domain.ChatMessage) (*domain.ChatMessage, error) {
	var resp chatPayload
	if err := c.do(ctx, OpPostMessage, http.MethodPost, c.endpoints.PostMessage, chatPayloadFrom(msg), &resp); err != nil {
		return nil, err
	}
	posted := resp.toDomain()
	if posted.IncidentID == "" {
		// Some flows answer with an empty body; echo what was sent.
		posted = msg
	}
	return &posted, nil
}

// do performs one call and decodes a JSON response into out when out is non-nil.
func (c *HTTPClient) do(ctx context.Context, op, method, url string, in, out any) error {
	if strings.TrimSpace(url) == "" {
		return &Error{Op: op, Err: ErrNotConfigured}
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return &Error{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("crm call failed", zap.String("op", op), zap.Error(err))
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("crm call",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
