package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-portal/internal/cache"
	"github.com/spec-kit/incident-portal/internal/crm"
	"github.com/spec-kit/incident-portal/internal/domain"
	"github.com/spec-kit/incident-portal/internal/events"
	"github.com/spec-kit/incident-portal/internal/validation"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

var testPolicy = validation.Policy{AllowedEmailDomain: "portal.example", MinPasswordLength: 8}

func newStaffFixture(t *testing.T) (*StaffService, *countingBackend, *eventLog) {
	t.Helper()
	backend := &countingBackend{Backend: newMemoryBackend(t)}
	dispatcher := newDispatcher()
	log := captureEvents(dispatcher, events.EventStaffChanged)
	svc := NewStaffService(StaffDependencies{
		Backend:    backend,
		Cache:      cache.NewMemoryStaffCache(time.Minute),
		Policy:     testPolicy,
		Dispatcher: dispatcher,
	})
	return svc, backend, log
}

func validForm() StaffForm {
	return StaffForm{
		Name:       "Nia Patel",
		Email:      "nia.patel@portal.example",
		Password:   "long-enough",
		Department: "IT",
		Skillset:   []string{"Printers"},
		Role:       "Support",
	}
}

func TestStaffListUsesCacheUntilMutation(t *testing.T) {
	svc, backend, log := newStaffFixture(t)
	ctx := context.Background()

	first, err := svc.List(ctx)
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.calls())

	added, err := svc.Add(ctx, admin, validForm())
	require.NoError(t, err)

	after, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.calls())
	assert.Len(t, after, len(first)+1)

	require.Len(t, log.all(), 1)
	payload := log.all()[0].Payload.(events.StaffChangedPayload)
	assert.Equal(t, added.ID, payload.StaffID)
	assert.Equal(t, events.StaffAdded, payload.Change)
}

func TestStaffListFallsBackWhenCacheFails(t *testing.T) {
	backend := newMemoryBackend(t)
	svc := NewStaffService(StaffDependencies{Backend: backend, Cache: brokenCache{}})

	staff, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, staff)
}

func TestStaffFormPolicies(t *testing.T) {
	svc, _, _ := newStaffFixture(t)
	ctx := context.Background()

	form := validForm()
	form.Email = "nia@gmail.com"
	form.Password = "short"
	form.Skillset = []string{" "}
	form.Role = "manager"
	_, err := svc.Add(ctx, admin, form)
	mapped := apperrors.ToDomainError(err)
	require.Equal(t, "VALIDATION_FAILED", mapped.Code)
	assert.Contains(t, mapped.Details, "email")
	assert.Contains(t, mapped.Details, "password")
	assert.Contains(t, mapped.Details, "skillset")
	assert.Contains(t, mapped.Details, "role")

	_, err = svc.Add(ctx, supportIT, validForm())
	assert.Equal(t, "FORBIDDEN", errorCode(t, err))
}

func TestStaffEditKeepsPasswordWhenBlank(t *testing.T) {
	svc, _, _ := newStaffFixture(t)
	ctx := context.Background()

	form := validForm()
	form.Name = "Omar Ortiz-Diaz"
	form.Email = "omar.ortiz@portal.example"
	form.Password = ""
	edited, err := svc.Edit(ctx, admin, "stf-it-1", form)
	require.NoError(t, err)
	assert.Equal(t, "Omar Ortiz-Diaz", edited.Name)

	_, err = svc.Edit(ctx, admin, "stf-ghost", validForm())
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}

func TestStaffEditKeepsAvailabilityWhenOmitted(t *testing.T) {
	svc, _, _ := newStaffFixture(t)
	ctx := context.Background()

	form := validForm()
	form.Email = "luis.moreno@portal.example"
	form.Password = ""
	form.Department = "Facilities"
	edited, err := svc.Edit(ctx, admin, "stf-fac-1", form)
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityBusy, edited.Availability)

	unavailable := "unavailable"
	form.Availability = &unavailable
	edited, err = svc.Edit(ctx, admin, "stf-fac-1", form)
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityUnavailable, edited.Availability)

	asleep := "asleep"
	form.Availability = &asleep
	_, err = svc.Edit(ctx, admin, "stf-fac-1", form)
	mapped := apperrors.ToDomainError(err)
	require.Equal(t, "VALIDATION_FAILED", mapped.Code)
	assert.Contains(t, mapped.Details, "availability")
}

func TestStaffAddDefaultsToAvailable(t *testing.T) {
	svc, _, _ := newStaffFixture(t)

	added, err := svc.Add(context.Background(), admin, validForm())
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityAvailable, added.Availability)
}

func TestUpdateSkillsWritesBackCurrentCRMFields(t *testing.T) {
	svc, backend, _ := newStaffFixture(t)
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, backend.calls())

	// Changed in the CRM behind the warm cache.
	_, err = backend.Backend.EditStaff(ctx, "stf-it-1", crm.StaffInput{
		Name:         "Omar Ortiz",
		Email:        "omar.ortiz@portal.example",
		Department:   "IT",
		Skillset:     []string{"Networking", "VPN", "Hardware"},
		Availability: domain.AvailabilityBusy,
		Role:         domain.RoleSupport,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateSkills(ctx, admin, "stf-it-1", SkillsChange{Add: []string{"Printers"}})
	require.NoError(t, err)
	assert.Equal(t, 2, backend.calls())
	assert.Equal(t, domain.AvailabilityBusy, updated.Availability)
	assert.Equal(t, []string{"Networking", "VPN", "Hardware", "Printers"}, updated.Skillset)
}

func TestUpdateSkills(t *testing.T) {
	svc, _, _ := newStaffFixture(t)
	ctx := context.Background()

	updated, err := svc.UpdateSkills(ctx, admin, "stf-it-1", SkillsChange{Add: []string{" vpn ", "Printers"}, Remove: []string{"hardware"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Networking", "VPN", "Printers"}, updated.Skillset)

	_, err = svc.UpdateSkills(ctx, admin, "stf-it-1", SkillsChange{Remove: []string{"networking", "vpn", "printers"}})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
}

func TestDeleteStaff(t *testing.T) {
	svc, _, _ := newStaffFixture(t)
	ctx := context.Background()

	assert.Equal(t, "CONFLICT", errorCode(t, svc.Delete(ctx, admin, admin.ID)))
	require.NoError(t, svc.Delete(ctx, admin, "stf-fac-1"))

	_, err := svc.Find(ctx, "stf-fac-1")
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}

func TestStaffListMapsUpstreamFailure(t *testing.T) {
	backend := &flakyBackend{Backend: newMemoryBackend(t), fail: map[string]error{
		crm.OpListStaff: &crm.Error{Op: crm.OpListStaff, Err: crm.ErrNotConfigured},
	}}
	svc := NewStaffService(StaffDependencies{Backend: backend})

	_, err := svc.List(context.Background())
	assert.Equal(t, "UPSTREAM_NOT_CONFIGURED", errorCode(t, err))
}

type brokenCache struct{}

func (brokenCache) Get(context.Context) ([]domain.Staff, bool, error) {
	return nil, false, errors.New("redis down")
}
func (brokenCache) Set(context.Context, []domain.Staff) error { return errors.New("redis down") }
func (brokenCache) Invalidate(context.Context) error          { return errors.New("redis down") }
