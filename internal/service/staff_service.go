package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-portal/internal/cache"
	"github.com/spec-kit/incident-portal/internal/crm"
	"github.com/spec-kit/incident-portal/internal/domain"
	"github.com/spec-kit/incident-portal/internal/events"
	"github.com/spec-kit/incident-portal/internal/validation"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

// StaffService manages the CRM staff directory behind a short-lived cache.
type StaffService struct {
	backend    crm.Backend
	cache      cache.StaffCache
	validator  *validation.Validator
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// StaffDependencies bundles collaborators for the staff service.
type StaffDependencies struct {
	Backend    crm.Backend
	Cache      cache.StaffCache
	Policy     validation.Policy
	Validator  *validation.Validator
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewStaffService constructs the service. Cache may be nil. Without a
// Validator one is built from Policy.
func NewStaffService(deps StaffDependencies) *StaffService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validator := deps.Validator
	if validator == nil {
		validator = validation.New(deps.Policy)
	}
	return &StaffService{
		backend:    deps.Backend,
		cache:      deps.Cache,
		validator:  validator,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// StaffForm is the raw add/edit staff form. On edit an empty password keeps
// the current one and a nil Availability keeps the current availability. On
// add a nil Availability means Available.
type StaffForm struct {
	Name         string
	Email        string
	Password     string
	Department   string
	Skillset     []string
	Availability *string
	Role         string
}

// SkillsChange lists tags to add and remove in one edit.
type SkillsChange struct {
	Add    []string
	Remove []string
}

// List returns the staff directory, from cache when warm.
func (s *StaffService) List(ctx context.Context) ([]domain.Staff, error) {
	if s.cache != nil {
		staff, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("staff cache read failed", zap.Error(err))
		} else if ok {
			return staff, nil
		}
	}
	return s.load(ctx)
}

// Refresh reloads the directory from the CRM into the cache.
func (s *StaffService) Refresh(ctx context.Context) (int, error) {
	staff, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(staff), nil
}

// Find looks a staff member up by id.
func (s *StaffService) Find(ctx context.Context, staffID string) (*domain.Staff, error) {
	staff, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, member := range staff {
		if member.ID == staffID {
			return &member, nil
		}
	}
	return nil, apperrors.NewNotFound("staff member", map[string]any{"staff_id": staffID})
}

// Add creates a staff member after applying the form policies.
func (s *StaffService) Add(ctx context.Context, actor domain.Identity, form StaffForm) (*domain.Staff, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	input, err := s.validateForm(form, true, domain.AvailabilityAvailable)
	if err != nil {
		return nil, err
	}
	staff, err := s.backend.AddStaff(ctx, input)
	if err != nil {
		return nil, mapCRMError(crm.OpAddStaff, err)
	}
	s.changed(ctx, actor, staff.ID, events.StaffAdded)
	return staff, nil
}

// Edit replaces a staff member's fields.
func (s *StaffService) Edit(ctx context.Context, actor domain.Identity, staffID string, form StaffForm) (*domain.Staff, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	current, err := s.findFresh(ctx, staffID)
	if err != nil {
		return nil, err
	}
	input, err := s.validateForm(form, false, current.Availability)
	if err != nil {
		return nil, err
	}
	staff, err := s.backend.EditStaff(ctx, staffID, input)
	if err != nil {
		return nil, mapCRMError(crm.OpEditStaff, err)
	}
	s.changed(ctx, actor, staffID, events.StaffEdited)
	return staff, nil
}

// UpdateSkills adds then removes skill tags. The result must keep at least
// one tag. The other fields are written back as the CRM holds them now.
func (s *StaffService) UpdateSkills(ctx context.Context, actor domain.Identity, staffID string, change SkillsChange) (*domain.Staff, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	current, err := s.findFresh(ctx, staffID)
	if err != nil {
		return nil, err
	}

	skills := validation.NormalizeSkills(current.Skillset)
	for _, tag := range change.Add {
		skills = validation.AddSkill(skills, tag)
	}
	for _, tag := range change.Remove {
		skills = validation.RemoveSkill(skills, tag)
	}
	if err := s.validator.Fields(validation.Rule{Field: "skillset", Value: skills, Tag: "min=1"}); err != nil {
		return nil, validation.AsDomainError(err)
	}

	staff, err := s.backend.EditStaff(ctx, staffID, crm.StaffInput{
		Name:         current.Name,
		Email:        current.Email,
		Department:   current.Department,
		Skillset:     skills,
		Availability: current.Availability,
		Role:         current.Role,
	})
	if err != nil {
		return nil, mapCRMError(crm.OpEditStaff, err)
	}
	s.changed(ctx, actor, staffID, events.StaffEdited)
	return staff, nil
}

// Delete removes a staff member. Admins cannot delete themselves.
func (s *StaffService) Delete(ctx context.Context, actor domain.Identity, staffID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if staffID == actor.ID {
		return apperrors.NewConflict("cannot delete your own account", nil)
	}
	if err := s.backend.DeleteStaff(ctx, staffID); err != nil {
		return mapCRMError(crm.OpDeleteStaff, err)
	}
	s.changed(ctx, actor, staffID, events.StaffDeleted)
	return nil
}

// findFresh bypasses the cache so write-backs start from the CRM's copy.
func (s *StaffService) findFresh(ctx context.Context, staffID string) (*domain.Staff, error) {
	staff, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, member := range staff {
		if member.ID == staffID {
			return &member, nil
		}
	}
	return nil, apperrors.NewNotFound("staff member", map[string]any{"staff_id": staffID})
}

func (s *StaffService) load(ctx context.Context) ([]domain.Staff, error) {
	staff, err := s.backend.ListStaff(ctx)
	if err != nil {
		return nil, mapCRMError(crm.OpListStaff, err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, staff); err != nil {
			s.logger.Warn("staff cache write failed", zap.Error(err))
		}
	}
	return staff, nil
}

func (s *StaffService) changed(ctx context.Context, actor domain.Identity, staffID string, change events.StaffChange) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("staff cache invalidate failed", zap.Error(err))
		}
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:    events.EventStaffChanged,
		Actor:   actorOf(actor),
		Payload: events.StaffChangedPayload{StaffID: staffID, Change: change},
	})
}

func (s *StaffService) validateForm(form StaffForm, requirePassword bool, keepAvailability domain.Availability) (crm.StaffInput, error) {
	input := crm.StaffInput{
		Name:       strings.TrimSpace(form.Name),
		Email:      strings.TrimSpace(form.Email),
		Password:   form.Password,
		Department: strings.TrimSpace(form.Department),
		Skillset:   validation.NormalizeSkills(form.Skillset),
	}

	passwordTag := "omitempty,password"
	if requirePassword {
		passwordTag = "required,password"
	}
	rules := []validation.Rule{
		{Field: "name", Value: input.Name, Tag: "notblank"},
		{Field: "department", Value: input.Department, Tag: "notblank"},
		{Field: "email", Value: input.Email, Tag: "required,email,emaildomain"},
		{Field: "password", Value: input.Password, Tag: passwordTag},
		{Field: "skillset", Value: input.Skillset, Tag: "min=1"},
		{Field: "role", Value: form.Role, Tag: "role"},
	}
	if form.Availability != nil {
		rules = append(rules, validation.Rule{Field: "availability", Value: *form.Availability, Tag: "availability"})
	}
	if err := s.validator.Fields(rules...); err != nil {
		return crm.StaffInput{}, validation.AsDomainError(err)
	}

	input.Role, _ = domain.ParseRole(form.Role)
	input.Availability = keepAvailability
	if form.Availability != nil {
		input.Availability, _ = domain.ParseAvailability(*form.Availability)
	}
	return input, nil
}

func requireAdmin(actor domain.Identity) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}
