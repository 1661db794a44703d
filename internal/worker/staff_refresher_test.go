package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLoader struct {
	calls atomic.Int32
	err   error
}

func (f *fakeLoader) Refresh(context.Context) (int, error) {
	f.calls.Add(1)
	return 3, f.err
}

func TestStaffDirectoryRefresherRejectsBadSchedule(t *testing.T) {
	_, err := NewStaffDirectoryRefresher(&fakeLoader{}, "every now and then", time.Second, zap.NewNop())
	assert.Error(t, err)
}

func TestStaffDirectoryRefresherRunOnce(t *testing.T) {
	loader := &fakeLoader{err: errors.New("crm down")}
	r, err := NewStaffDirectoryRefresher(loader, "@every 1h", time.Second, zap.NewNop())
	require.NoError(t, err)

	r.RunOnce()
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestStaffDirectoryRefresherWarmsOnStart(t *testing.T) {
	loader := &fakeLoader{}
	r, err := NewStaffDirectoryRefresher(loader, "@every 1h", time.Second, zap.NewNop())
	require.NoError(t, err)

	r.Start()
	defer r.Stop(context.Background())

	assert.Eventually(t, func() bool { return loader.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
}
