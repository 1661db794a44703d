package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/incident-portal/internal/crm"
	"github.com/spec-kit/incident-portal/internal/domain"
	"github.com/spec-kit/incident-portal/internal/events"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

var (
	employee  = domain.Identity{ID: "emp-1", Name: "Ellie Chen", Email: "ellie.chen@portal.example", Role: domain.RoleEmployee}
	supportIT = domain.Identity{ID: "stf-it-1", Name: "Omar Ortiz", Email: "omar.ortiz@portal.example", Role: domain.RoleSupport}
	supportHR = domain.Identity{ID: "stf-hr-1", Name: "Priya Raman", Email: "priya.raman@portal.example", Role: domain.RoleSupport}
	admin     = domain.Identity{ID: "stf-admin", Name: "Dana Admin", Email: "dana.admin@portal.example", Role: domain.RoleAdmin}
)

func newMemoryBackend(t *testing.T) *crm.Memory {
	t.Helper()
	seed, err := crm.LoadSeed("")
	require.NoError(t, err)
	backend, err := crm.NewMemory(seed, bcrypt.MinCost)
	require.NoError(t, err)
	return backend
}

// flakyBackend fails the listed operations and delegates the rest.
type flakyBackend struct {
	crm.Backend
	fail map[string]error
}

func (b *flakyBackend) UpdateIncident(ctx context.Context, id string, u crm.IncidentUpdate) error {
	if err, ok := b.fail[crm.OpUpdateIncident]; ok {
		return err
	}
	return b.Backend.UpdateIncident(ctx, id, u)
}

func (b *flakyBackend) ListStaff(ctx context.Context) ([]domain.Staff, error) {
	if err, ok := b.fail[crm.OpListStaff]; ok {
		return nil, err
	}
	return b.Backend.ListStaff(ctx)
}

// countingBackend counts ListStaff calls.
type countingBackend struct {
	crm.Backend
	mu        sync.Mutex
	listCalls int
}

func (b *countingBackend) ListStaff(ctx context.Context) ([]domain.Staff, error) {
	b.mu.Lock()
	b.listCalls++
	b.mu.Unlock()
	return b.Backend.ListStaff(ctx)
}

func (b *countingBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listCalls
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func captureEvents(d events.Dispatcher, types ...events.EventType) *eventLog {
	log := &eventLog{}
	for _, et := range types {
		d.Subscribe(et, func(_ context.Context, e events.Event) error {
			log.mu.Lock()
			defer log.mu.Unlock()
			log.events = append(log.events, e)
			return nil
		})
	}
	return log
}

func (l *eventLog) all() []events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]events.Event{}, l.events...)
}

func newDispatcher() events.Dispatcher {
	return events.NewInMemoryDispatcher(zap.NewNop())
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}
