package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-portal/internal/domain"
)

func TestMemoryTransitionRepositoryListsNewestFirst(t *testing.T) {
	repo := NewMemoryTransitionRepository()
	ctx := context.Background()
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	first := &domain.Transition{IncidentID: "INC-1", FromStatus: domain.StatusNew, ToStatus: domain.StatusAccepted, Action: domain.ActionAccept, CreatedAt: base}
	second := &domain.Transition{IncidentID: "INC-1", FromStatus: domain.StatusAccepted, ToStatus: domain.StatusInProgress, Action: domain.ActionStartProgress, CreatedAt: base.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, &domain.Transition{IncidentID: "INC-2", CreatedAt: base}))

	got, err := repo.ListByIncident(ctx, "INC-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.ActionStartProgress, got[0].Action)
	assert.NotEmpty(t, got[1].ID)

	empty, err := repo.ListByIncident(ctx, "INC-404")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
