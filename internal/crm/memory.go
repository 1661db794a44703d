package crm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/incident-portal/internal/domain"
	"github.com/spec-kit/incident-portal/internal/validation"
)

// Memory is an in-process Backend used for local development and tests. It
// mimics the CRM's behavior closely enough to drive every dashboard.
type Memory struct {
	mu         sync.Mutex
	bcryptCost int
	now        func() time.Time
	staff      map[string]memoryStaff
	incidents  map[string]domain.Incident
	drafts     map[string]Submission
	messages   map[string][]domain.ChatMessage
	classifier Classifier
}

type memoryStaff struct {
	domain.Staff
	passwordHash string
}

// NewMemory builds a backend preloaded with seed. bcryptCost applies to
// seeded and newly added passwords.
func NewMemory(seed *Seed, bcryptCost int) (*Memory, error) {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	m := &Memory{
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
		staff:      map[string]memoryStaff{},
		incidents:  map[string]domain.Incident{},
		drafts:     map[string]Submission{},
		messages:   map[string][]domain.ChatMessage{},
		classifier: KeywordClassifier{},
	}
	if seed == nil {
		return m, nil
	}
	if err := m.load(seed); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Memory) load(seed *Seed) error {
	for _, s := range seed.Staff {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), m.bcryptCost)
		if err != nil {
			return fmt.Errorf("hash seed password for %s: %w", s.ID, err)
		}
		m.staff[s.ID] = memoryStaff{
			Staff: domain.Staff{
				ID:           s.ID,
				Name:         s.Name,
				Email:        s.Email,
				Department:   s.Department,
				Skillset:     validation.NormalizeSkills(s.Skillset),
				Availability: lenientAvailability(s.Availability),
				Role:         lenientRole(s.Role),
			},
			passwordHash: string(hash),
		}
	}
	for _, si := range seed.Incidents {
		incident := domain.Incident{
			ID:          si.ID,
			Title:       si.Title,
			Description: si.Description,
			Category:    lenientCategory(si.Category),
			Severity:    lenientSeverity(si.Severity),
			Status:      lenientStatus(si.Status),
			AISummary:   si.AISummary,
			CreatedAt:   si.CreatedAt,
			UpdatedAt:   si.CreatedAt,
		}
		m.setReporter(&incident, si.ReporterID)
		m.setAssignee(&incident, si.AssignedToID)
		m.incidents[incident.ID] = incident
	}
	for _, sm := range seed.Messages {
		msg := domain.ChatMessage{
			ID:         sm.ID,
			IncidentID: sm.IncidentID,
			Message:    sm.Message,
			Timestamp:  sm.Timestamp,
			SenderID:   sm.SenderID,
			Read:       sm.Read,
		}
		if sender, ok := m.staff[sm.SenderID]; ok {
			msg.SenderName = sender.Name
			msg.SenderRole = sender.Role
		}
		m.messages[sm.IncidentID] = append(m.messages[sm.IncidentID], msg)
	}
	return nil
}

func (m *Memory) Login(_ context.Context, email, password string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.staff {
		if !strings.EqualFold(s.Email, strings.TrimSpace(email)) {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
			break
		}
		return &domain.Identity{ID: s.ID, Name: s.Name, Email: s.Email, Role: s.Role, Department: s.Department}, nil
	}
	return nil, &Error{Op: OpLogin, StatusCode: 401, Err: errors.New("invalid credentials")}
}

func (m *Memory) ListStaff(_ context.Context) ([]domain.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Staff, 0, len(m.staff))
	for _, s := range m.staff {
		out = append(out, cloneStaff(s.Staff))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) AddStaff(_ context.Context, input StaffInput) (*domain.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.staff {
		if strings.EqualFold(s.Email, input.Email) {
			return nil, &Error{Op: OpAddStaff, StatusCode: 409, Err: errors.New("email already exists")}
		}
	}
	if input.Password == "" {
		return nil, badRequest(OpAddStaff, errors.New("password required"))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), m.bcryptCost)
	if err != nil {
		return nil, &Error{Op: OpAddStaff, Err: err}
	}
	staff := domain.Staff{
		ID:           "stf-" + uuid.NewString()[:8],
		Name:         input.Name,
		Email:        input.Email,
		Department:   input.Department,
		Skillset:     validation.NormalizeSkills(input.Skillset),
		Availability: input.Availability,
		Role:         input.Role,
	}
	m.staff[staff.ID] = memoryStaff{Staff: staff, passwordHash: string(hash)}
	out := cloneStaff(staff)
	return &out, nil
}

func (m *Memory) EditStaff(_ context.Context, staffID string, input StaffInput) (*domain.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.staff[staffID]
	if !ok {
		return nil, notFound(OpEditStaff)
	}
	existing.Name = input.Name
	existing.Email = input.Email
	existing.Department = input.Department
	existing.Skillset = validation.NormalizeSkills(input.Skillset)
	existing.Availability = input.Availability
	existing.Role = input.Role
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), m.bcryptCost)
		if err != nil {
			return nil, &Error{Op: OpEditStaff, Err: err}
		}
		existing.passwordHash = string(hash)
	}
	m.staff[staffID] = existing
	out := cloneStaff(existing.Staff)
	return &out, nil
}

func (m *Memory) DeleteStaff(_ context.Context, staffID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.staff[staffID]; !ok {
		return notFound(OpDeleteStaff)
	}
	delete(m.staff, staffID)
	return nil
}

func (m *Memory) FetchIncidents(_ context.Context) ([]domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Incident, 0, len(m.incidents))
	for _, incident := range m.incidents {
		out = append(out, incident)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) FetchIncident(_ context.Context, incidentID string) (*domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	incident, ok := m.incidents[incidentID]
	if !ok {
		return nil, notFound(OpFetchIncident)
	}
	return &incident, nil
}

func (m *Memory) UpdateIncident(_ context.Context, incidentID string, u IncidentUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	incident, ok := m.incidents[incidentID]
	if !ok {
		return notFound(OpUpdateIncident)
	}
	if u.Status != nil {
		incident.Status = *u.Status
	}
	if u.Title != nil {
		incident.Title = *u.Title
	}
	if u.Description != nil {
		incident.Description = *u.Description
	}
	if u.Category != nil {
		incident.Category = *u.Category
	}
	if u.Severity != nil {
		incident.Severity = *u.Severity
	}
	if u.AssignedToID != nil {
		m.setAssignee(&incident, *u.AssignedToID)
		if u.AssignedToName != nil {
			incident.AssignedToName = *u.AssignedToName
		}
		if u.AssignedToEmail != nil {
			incident.AssignedToEmail = *u.AssignedToEmail
		}
	}
	incident.UpdatedAt = m.now()
	m.incidents[incidentID] = incident
	return nil
}

func (m *Memory) DeleteIncident(_ context.Context, incidentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.incidents[incidentID]; !ok {
		return notFound(OpDeleteIncident)
	}
	delete(m.incidents, incidentID)
	delete(m.messages, incidentID)
	return nil
}

func (m *Memory) SubmitIncident(_ context.Context, s Submission) (*SubmitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if strings.TrimSpace(s.Title) == "" && strings.TrimSpace(s.Description) == "" {
		return nil, badRequest(OpSubmitIncident, errors.New("empty submission"))
	}
	classification := m.classifier.Classify(s.Title, s.Description)
	assignment := m.pickAssignee(classification)

	draftID := fmt.Sprintf("INC-%s", strings.ToUpper(uuid.NewString()[:8]))
	m.drafts[draftID] = s
	return &SubmitResult{DraftID: draftID, Classification: classification, StaffAssignment: assignment}, nil
}

func (m *Memory) ConfirmIncident(_ context.Context, c Confirmation) (*domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A draft only exists for the employee who submitted it.
	draft, ok := m.drafts[c.DraftID]
	if !ok || draft.ReporterID != c.Submission.ReporterID {
		return nil, notFound(OpConfirmIncident)
	}
	delete(m.drafts, c.DraftID)

	now := m.now()
	incident := domain.Incident{
		ID:            c.DraftID,
		Title:         c.Submission.Title,
		Description:   c.Submission.Description,
		Category:      c.Classification.Category,
		Severity:      c.Classification.Severity,
		Status:        domain.StatusNew,
		ReporterID:    c.Submission.ReporterID,
		ReporterName:  c.Submission.ReporterName,
		ReporterEmail: c.Submission.ReporterEmail,
		AISummary:     c.Classification.Summary,
		AIEmailText:   c.Classification.EmailText,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.setAssignee(&incident, c.StaffAssignment.StaffID)
	if incident.AssignedToID == "" && c.StaffAssignment.StaffID != "" {
		incident.AssignedToID = c.StaffAssignment.StaffID
		incident.AssignedToName = c.StaffAssignment.Name
		incident.AssignedToEmail = c.StaffAssignment.Email
	}
	m.incidents[incident.ID] = incident
	return &incident, nil
}

func (m *Memory) RetrieveMessages(_ context.Context, incidentID string) ([]domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.incidents[incidentID]; !ok {
		return nil, notFound(OpRetrieveMessages)
	}
	return append([]domain.ChatMessage{}, m.messages[incidentID]...), nil
}

func (m *Memory) PostMessage(_ context.Context, msg domain.ChatMessage) (*domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.incidents[msg.IncidentID]; !ok {
		return nil, notFound(OpPostMessage)
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = m.now()
	}
	m.messages[msg.IncidentID] = append(m.messages[msg.IncidentID], msg)
	return &msg, nil
}

// pickAssignee prefers available support staff in the classified department
// with the most skills mentioned in the summary. Callers hold m.mu.
func (m *Memory) pickAssignee(c domain.Classification) domain.StaffAssignment {
	var (
		best      *domain.Staff
		bestScore = -1
	)
	ids := make([]string, 0, len(m.staff))
	for id := range m.staff {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	summary := strings.ToLower(c.Summary)
	for _, id := range ids {
		s := m.staff[id].Staff
		if s.Role != domain.RoleSupport {
			continue
		}
		score := 0
		if strings.EqualFold(s.Department, string(c.Category)) {
			score += 10
		}
		if s.Availability == domain.AvailabilityAvailable {
			score += 5
		}
		for _, skill := range s.Skillset {
			if strings.Contains(summary, strings.ToLower(skill)) {
				score++
			}
		}
		if score > bestScore {
			candidate := s
			best = &candidate
			bestScore = score
		}
	}
	if best == nil {
		return domain.StaffAssignment{}
	}
	return domain.StaffAssignment{
		StaffID: best.ID,
		Name:    best.Name,
		Email:   best.Email,
		Reason:  fmt.Sprintf("%s staff member, %s", best.Department, strings.ToLower(string(best.Availability))),
	}
}

func (m *Memory) setReporter(incident *domain.Incident, id string) {
	incident.ReporterID = id
	if s, ok := m.staff[id]; ok {
		incident.ReporterName = s.Name
		incident.ReporterEmail = s.Email
	}
}

func (m *Memory) setAssignee(incident *domain.Incident, id string) {
	incident.AssignedToID = id
	incident.AssignedToName = ""
	incident.AssignedToEmail = ""
	if s, ok := m.staff[id]; ok {
		incident.AssignedToName = s.Name
		incident.AssignedToEmail = s.Email
	}
}

func cloneStaff(s domain.Staff) domain.Staff {
	s.Skillset = append([]string{}, s.Skillset...)
	return s
}
