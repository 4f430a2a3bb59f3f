package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return f.info, f.err
}

type fakeEnqueuer struct {
	got PermissionsWarmupPayload
	err error
}

func (f *fakeEnqueuer) EnqueuePermissionsWarmup(ctx context.Context, payload PermissionsWarmupPayload) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got = payload
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil
}

func allowAll(next http.Handler) http.Handler { return next }

func denyAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	})
}

func mount(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	return r
}

func TestJobsHealth(t *testing.T) {
	router := mount(NewHandler(HandlerConfig{Inspector: fakeInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Failed: 1}}}))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body queueHealth
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, queueHealth{Queue: QueueDefault, Pending: 3, Failed: 1}, body)

	router = mount(NewHandler(HandlerConfig{Inspector: fakeInspector{err: errors.New("redis down")}}))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	router = mount(NewHandler(HandlerConfig{}))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestEnqueueWarmup(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	router := mount(NewHandler(HandlerConfig{Enqueuer: enqueuer, Guard: allowAll}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs/permissions-warmup", strings.NewReader(`{"actors":["ana"]}`))
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, []string{"ana"}, enqueuer.got.Actors)
	assert.Equal(t, "manual", enqueuer.got.Reason)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/permissions-warmup", nil))
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Empty(t, enqueuer.got.Actors)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/permissions-warmup", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEnqueueWarmupGuardedAndFailing(t *testing.T) {
	router := mount(NewHandler(HandlerConfig{Enqueuer: &fakeEnqueuer{}, Guard: denyAll}))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/permissions-warmup", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	router = mount(NewHandler(HandlerConfig{Enqueuer: &fakeEnqueuer{err: errors.New("redis down")}, Guard: allowAll}))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/permissions-warmup", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	router = mount(NewHandler(HandlerConfig{Enqueuer: &fakeEnqueuer{}}))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jobs/permissions-warmup", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code, "trigger is not mounted without a guard")
}
