package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-portal/internal/crm"
	"github.com/spec-kit/incident-portal/internal/domain"
	"github.com/spec-kit/incident-portal/internal/events"
	"github.com/spec-kit/incident-portal/internal/repository"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

type incidentFixture struct {
	backend     *crm.Memory
	service     *IncidentService
	transitions *repository.MemoryTransitionRepository
	events      *eventLog
}

func newIncidentFixture(t *testing.T, wrap func(crm.Backend) crm.Backend) incidentFixture {
	t.Helper()
	memory := newMemoryBackend(t)
	var backend crm.Backend = memory
	if wrap != nil {
		backend = wrap(memory)
	}

	dispatcher := newDispatcher()
	transitions := repository.NewMemoryTransitionRepository()
	NewTransitionRecorder(transitions).Register(dispatcher)
	log := captureEvents(dispatcher, events.EventIncidentStatusChanged, events.EventIncidentUpdated, events.EventIncidentConfirmed)

	staff := NewStaffService(StaffDependencies{Backend: backend, Logger: zap.NewNop()})
	svc := NewIncidentService(IncidentDependencies{
		Backend:     backend,
		Staff:       staff,
		Transitions: transitions,
		Dispatcher:  dispatcher,
	})
	return incidentFixture{backend: memory, service: svc, transitions: transitions, events: log}
}

func TestListIsScopedByRole(t *testing.T) {
	f := newIncidentFixture(t, nil)
	ctx := context.Background()

	page, err := f.service.List(ctx, employee, IncidentFilter{}, PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"INC-1002", "INC-1001"}, ids(page.Items))

	page, err = f.service.List(ctx, supportIT, IncidentFilter{}, PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"INC-1001"}, ids(page.Items))

	// a support agent cannot widen the scope with an assignee filter
	page, err = f.service.List(ctx, supportIT, IncidentFilter{AssignedToID: "stf-hr-1"}, PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"INC-1001"}, ids(page.Items))

	page, err = f.service.List(ctx, admin, IncidentFilter{Department: domain.CategoryHR}, PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"INC-1002"}, ids(page.Items))
}

func TestGetOffersActionsOnlyToAssigneeAndAdmin(t *testing.T) {
	f := newIncidentFixture(t, nil)
	ctx := context.Background()

	view, err := f.service.Get(ctx, supportIT, "INC-1001")
	require.NoError(t, err)
	assert.Equal(t, []domain.Action{domain.ActionStartProgress, domain.ActionReject}, view.Actions)

	view, err = f.service.Get(ctx, employee, "INC-1001")
	require.NoError(t, err)
	assert.Empty(t, view.Actions)

	_, err = f.service.Get(ctx, supportHR, "INC-1001")
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}

func TestApplyActionUpdatesOptimisticallyAndRecords(t *testing.T) {
	f := newIncidentFixture(t, nil)
	ctx := context.Background()

	updated, err := f.service.ApplyAction(ctx, supportIT, "INC-1001", domain.ActionStartProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)

	stored, err := f.backend.FetchIncident(ctx, "INC-1001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, stored.Status)

	history, err := f.service.Transitions(ctx, supportIT, "INC-1001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusAccepted, history[0].FromStatus)
	assert.Equal(t, domain.StatusInProgress, history[0].ToStatus)
	assert.Equal(t, "stf-it-1", history[0].ActorID)

	updated, err = f.service.ApplyAction(ctx, supportIT, "INC-1001", domain.ActionResolve)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, updated.Status)

	view, err := f.service.Get(ctx, supportIT, "INC-1001")
	require.NoError(t, err)
	assert.Empty(t, view.Actions)
}

func TestApplyActionRejectsOutOfOrder(t *testing.T) {
	f := newIncidentFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.ApplyAction(ctx, supportIT, "INC-1001", domain.ActionResolve)
	mapped := apperrors.ToDomainError(err)
	assert.Equal(t, "INVALID_TRANSITION", mapped.Code)
	assert.Equal(t, http.StatusConflict, mapped.HTTPStatus)

	stored, err := f.backend.FetchIncident(ctx, "INC-1001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, stored.Status)
	assert.Empty(t, f.events.all())
}

func TestApplyActionLeavesStateOnCRMFailure(t *testing.T) {
	f := newIncidentFixture(t, func(b crm.Backend) crm.Backend {
		return &flakyBackend{Backend: b, fail: map[string]error{
			crm.OpUpdateIncident: &crm.Error{Op: crm.OpUpdateIncident, StatusCode: http.StatusInternalServerError},
		}}
	})
	ctx := context.Background()

	_, err := f.service.ApplyAction(ctx, supportIT, "INC-1001", domain.ActionStartProgress)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", errorCode(t, err))

	stored, err := f.backend.FetchIncident(ctx, "INC-1001")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, stored.Status)
	assert.Empty(t, f.events.all())
}

func TestApplyActionRequiresAssignee(t *testing.T) {
	f := newIncidentFixture(t, nil)

	_, err := f.service.ApplyAction(context.Background(), employee, "INC-1002", domain.ActionAccept)
	assert.Equal(t, "FORBIDDEN", errorCode(t, err))

	_, err = f.service.ApplyAction(context.Background(), supportIT, "INC-1002", domain.ActionAccept)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))

	updated, err := f.service.ApplyAction(context.Background(), admin, "INC-1002", domain.ActionReject)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, updated.Status)
}

func TestAdminEditMaySkipStates(t *testing.T) {
	f := newIncidentFixture(t, nil)
	ctx := context.Background()

	status := domain.StatusResolved
	assignee := "stf-it-1"
	updated, err := f.service.Edit(ctx, admin, "INC-1002", EditInput{Status: &status, AssignedToID: &assignee})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, updated.Status)
	assert.Equal(t, "Omar Ortiz", updated.AssignedToName)

	history, err := f.service.Transitions(ctx, admin, "INC-1002")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ActionAdminEdit, history[0].Action)
	assert.Equal(t, domain.StatusNew, history[0].FromStatus)

	types := []events.EventType{}
	for _, e := range f.events.all() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []events.EventType{events.EventIncidentUpdated, events.EventIncidentStatusChanged}, types)
}

func TestAdminEditValidation(t *testing.T) {
	f := newIncidentFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.Edit(ctx, admin, "INC-1002", EditInput{})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	blank := "  "
	_, err = f.service.Edit(ctx, admin, "INC-1002", EditInput{Title: &blank})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	ghost := "stf-ghost"
	_, err = f.service.Edit(ctx, admin, "INC-1002", EditInput{AssignedToID: &ghost})
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))

	title := "New title"
	_, err = f.service.Edit(ctx, supportHR, "INC-1002", EditInput{Title: &title})
	assert.Equal(t, "FORBIDDEN", errorCode(t, err))
}

func TestSubmitAndConfirm(t *testing.T) {
	f := newIncidentFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.Submit(ctx, employee, SubmitInput{Title: " ", Description: "x"})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	draft, err := f.service.Submit(ctx, employee, SubmitInput{Title: "Payroll missing overtime", Description: "My overtime was not paid."})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryHR, draft.Classification.Category)

	classification := draft.Classification
	classification.Severity = domain.SeverityHigh
	incident, err := f.service.Confirm(ctx, employee, ConfirmInput{
		DraftID:         draft.DraftID,
		Title:           "Payroll missing overtime",
		Description:     "My overtime was not paid.",
		Classification:  classification,
		StaffAssignment: domain.StaffAssignment{StaffID: "stf-hr-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, incident.Status)
	assert.Equal(t, domain.SeverityHigh, incident.Severity)
	assert.Equal(t, "Priya Raman", incident.AssignedToName)
	assert.Equal(t, "emp-1", incident.ReporterID)

	page, err := f.service.List(ctx, employee, IncidentFilter{}, PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, incident.ID, page.Items[0].ID)
}

func TestConfirmValidatesClassification(t *testing.T) {
	f := newIncidentFixture(t, nil)

	_, err := f.service.Confirm(context.Background(), employee, ConfirmInput{
		DraftID:        "INC-X",
		Title:          "t",
		Description:    "d",
		Classification: domain.Classification{Category: "Legal", Severity: domain.SeverityLow},
	})
	mapped := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", mapped.Code)
	assert.Contains(t, mapped.Details, "category")
	assert.Contains(t, mapped.Details, "summary")
}

func TestSummaryCountsVisibleIncidents(t *testing.T) {
	f := newIncidentFixture(t, nil)

	summary, err := f.service.Summary(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.ByStatus[domain.StatusNew])
	assert.Equal(t, 1, summary.ByStatus[domain.StatusAccepted])
	assert.Equal(t, 0, summary.ByStatus[domain.StatusRejected])
	assert.Equal(t, 1, summary.ByCategory[domain.CategoryHR])

	summary, err = f.service.Summary(context.Background(), supportHR)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
}

func TestDeleteRequiresAdmin(t *testing.T) {
	f := newIncidentFixture(t, nil)
	ctx := context.Background()

	assert.Equal(t, "FORBIDDEN", errorCode(t, f.service.Delete(ctx, supportIT, "INC-1001")))
	require.NoError(t, f.service.Delete(ctx, admin, "INC-1001"))

	_, err := f.backend.FetchIncident(ctx, "INC-1001")
	assert.True(t, crm.IsNotFound(err))
	assert.Equal(t, "NOT_FOUND", errorCode(t, f.service.Delete(ctx, admin, "INC-1001")))
}

func TestTransitionsWithoutAuditStore(t *testing.T) {
	svc := NewIncidentService(IncidentDependencies{Backend: newMemoryBackend(t)})

	items, err := svc.Transitions(context.Background(), admin, "INC-1001")
	require.NoError(t, err)
	assert.Empty(t, items)
}
