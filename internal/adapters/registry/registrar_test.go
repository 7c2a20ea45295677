package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pokeatlas/syncbridge/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestRegister(t *testing.T) {
	var got registration
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/clients/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	r := New(srv.URL, "client-1", "http://localhost:3001", "1.2.0")
	require.NoError(t, r.Register(context.Background()))

	assert.Equal(t, "client-1", got.ClientID)
	assert.Equal(t, "http://localhost:3001", got.ClientURL)
	assert.Equal(t, "1.2.0", got.Version)
	assert.Contains(t, got.Capabilities, "pull-sync")
}

func TestRegisterFailureIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := New(srv.URL, "client-1", "http://localhost:3001", "1.2.0")
	err := r.Register(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRegister)
}

func TestRunRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	r := New(srv.URL, "client-1", "http://localhost:3001", "1.2.0",
		WithRetryInterval(10*time.Millisecond),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not finish after a successful registration")
	}
	assert.EqualValues(t, 3, calls.Load())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	r := New(srv.URL, "client-1", "http://localhost:3001", "1.2.0",
		WithRetryInterval(10*time.Millisecond),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Run(ctx)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
