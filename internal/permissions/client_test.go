package permissions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetchDecodesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/permissions/joao%20silva", r.URL.EscapedPath())
		assert.Equal(t, "joao silva", r.Header.Get(ActorHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"master":false,"isGerencia":false,"permissions":[{"indice":3,"invisivel":false,"incluir":false,"modificar":true,"excluir":false}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second, nil)
	set, err := client.Fetch(context.Background(), "joao silva")
	require.NoError(t, err)

	eval := NewEvaluator(set)
	assert.True(t, eval.CanAccess(3))
	assert.True(t, eval.CanModify(3))
	assert.False(t, eval.CanInsert(3))
}

func TestClientFetchStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{name: "not found", status: http.StatusNotFound, want: ErrNotFound},
		{name: "server error", status: http.StatusBadGateway, want: ErrUpstream},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second, nil).Fetch(context.Background(), "u-1")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestClientRejectsBlankActor(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:0", time.Second, nil).Fetch(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidActor)
}

func TestClientSharesConcurrentFetches(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"master":true,"permissions":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)
	var wg sync.WaitGroup
	results := make([]Set, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			set, err := client.Fetch(context.Background(), "u-1")
			assert.NoError(t, err)
			results[i] = set
		}(i)
	}
	require.Eventually(t, func() bool { return hits.Load() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	for _, set := range results {
		assert.True(t, set.Master)
	}
}

func TestClientCancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"master":false,"permissions":[{"indice":12,"invisivel":false,"incluir":true,"modificar":false,"excluir":false}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.Fetch(firstCtx, "u-1")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)

	secondDone := make(chan struct{})
	var second Set
	var secondErr error
	go func() {
		defer close(secondDone)
		second, secondErr = client.Fetch(context.Background(), "u-1")
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)
	close(release)
	<-secondDone

	require.NoError(t, secondErr)
	assert.True(t, NewEvaluator(second).CanInsert(12))
	assert.Equal(t, int32(1), hits.Load())
}
