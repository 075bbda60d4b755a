package relay

import (
	"context"
	"encoding/base64"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostOf(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestTriggerOpen_SendsGETToRelayPath(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(Config{Host: hostOf(t, srv)})
	require.NoError(t, c.TriggerOpen(context.Background()))

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/relay/0", gotPath)
	assert.Equal(t, "turn=on", gotQuery)
	assert.Empty(t, gotAuth, "no credentials configured")
}

func TestTriggerOpen_BasicAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	c := NewClient(Config{Host: hostOf(t, srv), Username: "admin", Password: "s3cret:pw"})
	require.NoError(t, c.TriggerOpen(context.Background()))

	require.True(t, strings.HasPrefix(gotAuth, "Basic "), "header %q", gotAuth)
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(gotAuth, "Basic "))
	require.NoError(t, err)
	assert.Equal(t, "admin:s3cret:pw", string(decoded))
}

func TestTriggerOpen_PartialCredentialsSkipAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	c := NewClient(Config{Host: hostOf(t, srv), Username: "admin"})
	require.NoError(t, c.TriggerOpen(context.Background()))
	assert.Empty(t, gotAuth)
}

func TestTriggerOpen_NonSuccessStatusIsRejected(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusNotFound, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		err := NewClient(Config{Host: hostOf(t, srv)}).TriggerOpen(context.Background())
		srv.Close()

		require.Error(t, err, "status %d", code)
		assert.ErrorIs(t, err, ErrRejected)
		assert.False(t, errors.Is(err, ErrUnreachable))

		var rerr *Error
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, KindRejected, rerr.Kind)
		assert.Equal(t, code, rerr.StatusCode)
	}
}

func TestTriggerOpen_TimeoutIsUnreachable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(Config{Host: hostOf(t, srv), RequestTimeout: 50 * time.Millisecond})

	start := time.Now()
	err := c.TriggerOpen(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestTriggerOpen_ConnectionRefusedIsUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	err = NewClient(Config{Host: addr, RequestTimeout: time.Second}).TriggerOpen(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Contains(t, err.Error(), addr)
}

func TestTriggerOpen_NoHostSkipsRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := NewClient(Config{})
	assert.False(t, c.Configured())
	require.NoError(t, c.TriggerOpen(context.Background()))
	assert.Zero(t, hits.Load())
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient(Config{Host: "10.0.0.5"})
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
	assert.Equal(t, "http://10.0.0.5/relay/0?turn=on", c.triggerURL())
}
