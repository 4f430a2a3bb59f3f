package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/odyssey-erp/odyssey-comercial/internal/jobs"
	"github.com/odyssey-erp/odyssey-comercial/internal/permissions"
)

type fakeWarmer struct {
	mu       sync.Mutex
	warmed   int
	warmErr  error
	known    map[string]bool
	setErr   error
	fullRuns int
	loaded   []string
}

func (f *fakeWarmer) Warm(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullRuns++
	return f.warmed, f.warmErr
}

func (f *fakeWarmer) Reload(ctx context.Context, actor string) (permissions.Set, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return permissions.Set{}, f.setErr
	}
	if !f.known[actor] {
		return permissions.Set{}, permissions.ErrNotFound
	}
	f.loaded = append(f.loaded, actor)
	return permissions.NewSet(false, false), nil
}

func newWarmupTask(t *testing.T, payload PermissionsWarmupPayload) *asynq.Task {
	t.Helper()
	task, err := NewPermissionsWarmupTask(payload)
	require.NoError(t, err)
	return task
}

func TestNewPermissionsWarmupTask(t *testing.T) {
	task := newWarmupTask(t, PermissionsWarmupPayload{Actors: []string{"ana"}, Reason: "cron"})
	assert.Equal(t, TaskPermissionsWarmup, task.Type())

	var payload PermissionsWarmupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, []string{"ana"}, payload.Actors)
	assert.Equal(t, "cron", payload.Reason)
}

func TestPermissionsWarmupFullRun(t *testing.T) {
	warmer := &fakeWarmer{warmed: 4}
	job := NewPermissionsWarmupJob(warmer, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	require.NoError(t, job.Handle(context.Background(), newWarmupTask(t, PermissionsWarmupPayload{Reason: "cron"})))
	assert.Equal(t, 1, warmer.fullRuns)
	assert.Empty(t, warmer.loaded)
}

func TestPermissionsWarmupSelectedActors(t *testing.T) {
	warmer := &fakeWarmer{known: map[string]bool{"ana": true, "rui": true}}
	job := NewPermissionsWarmupJob(warmer, nil, nil)

	err := job.Handle(context.Background(), newWarmupTask(t, PermissionsWarmupPayload{Actors: []string{"ana", "ghost", "rui"}}))
	require.NoError(t, err)
	assert.Equal(t, 0, warmer.fullRuns)
	assert.Equal(t, []string{"ana", "rui"}, warmer.loaded)
}

type editableRepository struct {
	mu   sync.Mutex
	sets map[string]permissions.Set
}

func (r *editableRepository) LoadSet(ctx context.Context, actor string) (permissions.Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[actor]
	if !ok {
		return permissions.Set{}, permissions.ErrNotFound
	}
	return set, nil
}

func (r *editableRepository) ReplaceSet(ctx context.Context, actor string, set permissions.Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[actor] = set
	return nil
}

func (r *editableRepository) ListActors(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	actors := make([]string, 0, len(r.sets))
	for actor := range r.sets {
		actors = append(actors, actor)
	}
	return actors, nil
}

func TestPermissionsWarmupRefreshesStaleCacheEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := &editableRepository{sets: map[string]permissions.Set{
		"ana": permissions.NewSet(false, false, permissions.Record{MenuIndex: 12}),
	}}
	svc := permissions.NewService(repo, permissions.NewCache(client, time.Minute), nil)
	ctx := context.Background()

	_, err := svc.Set(ctx, "ana")
	require.NoError(t, err)

	// Storage changes behind the service's back, as a direct database edit would.
	repo.mu.Lock()
	repo.sets["ana"] = permissions.NewSet(false, false, permissions.Record{MenuIndex: 12, Hidden: true})
	repo.mu.Unlock()

	job := NewPermissionsWarmupJob(svc, nil, nil)
	require.NoError(t, job.Handle(ctx, newWarmupTask(t, PermissionsWarmupPayload{Actors: []string{"ana"}})))

	set, err := svc.Set(ctx, "ana")
	require.NoError(t, err)
	assert.False(t, permissions.NewEvaluator(set).CanAccess(12))
}

func TestPermissionsWarmupPropagatesFailures(t *testing.T) {
	boom := errors.New("redis down")
	job := NewPermissionsWarmupJob(&fakeWarmer{warmErr: boom}, nil, nil)
	require.ErrorIs(t, job.Handle(context.Background(), newWarmupTask(t, PermissionsWarmupPayload{})), boom)

	job = NewPermissionsWarmupJob(&fakeWarmer{setErr: boom}, nil, nil)
	require.ErrorIs(t, job.Handle(context.Background(), newWarmupTask(t, PermissionsWarmupPayload{Actors: []string{"ana"}})), boom)
}

func TestPermissionsWarmupRejectsBadPayload(t *testing.T) {
	job := NewPermissionsWarmupJob(&fakeWarmer{}, nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskPermissionsWarmup, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestPermissionsWarmupNotConfigured(t *testing.T) {
	var job *PermissionsWarmupJob
	require.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskPermissionsWarmup, nil)))
}
