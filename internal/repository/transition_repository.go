package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-portal/internal/domain"
)

// TransitionRepository stores the status change audit trail.
type TransitionRepository interface {
	Create(ctx context.Context, transition *domain.Transition) error
	ListByIncident(ctx context.Context, incidentID string) ([]domain.Transition, error)
}

type transitionRepository struct {
	pool *pgxpool.Pool
}

// NewTransitionRepository builds a Postgres-backed repository.
func NewTransitionRepository(pool *pgxpool.Pool) TransitionRepository {
	return &transitionRepository{pool: pool}
}

func (r *transitionRepository) Create(ctx context.Context, t *domain.Transition) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO incident_transitions (id, incident_id, from_status, to_status, action, actor_id, actor_role)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		t.ID,
		t.IncidentID,
		string(t.FromStatus),
		string(t.ToStatus),
		string(t.Action),
		t.ActorID,
		string(t.ActorRole),
	).Scan(&t.CreatedAt)
}

func (r *transitionRepository) ListByIncident(ctx context.Context, incidentID string) ([]domain.Transition, error) {
	const query = `
        SELECT id, incident_id, from_status, to_status, action, actor_id, actor_role, created_at
        FROM incident_transitions WHERE incident_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, incidentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Transition{}
	for rows.Next() {
		var (
			t                           domain.Transition
			from, to, action, actorRole string
		)
		if err := rows.Scan(&t.ID, &t.IncidentID, &from, &to, &action, &t.ActorID, &actorRole, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.FromStatus = domain.IncidentStatus(from)
		t.ToStatus = domain.IncidentStatus(to)
		t.Action = domain.Action(action)
		t.ActorRole = domain.Role(actorRole)
		result = append(result, t)
	}
	return result, rows.Err()
}

// MemoryTransitionRepository keeps the audit trail in process. It backs the
// memory CRM mode and tests.
type MemoryTransitionRepository struct {
	mu    sync.Mutex
	items map[string][]domain.Transition
}

func NewMemoryTransitionRepository() *MemoryTransitionRepository {
	return &MemoryTransitionRepository{items: map[string][]domain.Transition{}}
}

func (r *MemoryTransitionRepository) Create(_ context.Context, t *domain.Transition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	r.items[t.IncidentID] = append(r.items[t.IncidentID], *t)
	return nil
}

func (r *MemoryTransitionRepository) ListByIncident(_ context.Context, incidentID string) ([]domain.Transition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]domain.Transition{}, r.items[incidentID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
