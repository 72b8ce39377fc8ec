package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thikana-bd/app-thikana/internal/logging"
	"github.com/thikana-bd/app-thikana/internal/models"
	"github.com/thikana-bd/app-thikana/internal/utils/httpclient"
)

func TestGatewayDispatcherSendsPayload(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pool := httpclient.NewPool(1)
	defer pool.Close()
	d := NewGatewaySMSDispatcher(srv.URL, pool, logging.Logger)

	require.NoError(t, d.Send(context.Background(), testMobile, "your code is 123456"))
	assert.Equal(t, testMobile, got["to"])
	assert.Equal(t, "your code is 123456", got["message"])
}

func TestGatewayDispatcherReportsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	pool := httpclient.NewPool(1)
	defer pool.Close()
	d := NewGatewaySMSDispatcher(srv.URL, pool, logging.Logger)

	err := d.Send(context.Background(), testMobile, "your code is 123456")
	assert.ErrorIs(t, err, models.ErrDispatchFailed)
}

func TestGatewayDispatcherReportsUnreachableGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	pool := httpclient.NewPool(1)
	defer pool.Close()
	d := NewGatewaySMSDispatcher(url, pool, logging.Logger)

	err := d.Send(context.Background(), testMobile, "your code is 123456")
	assert.ErrorIs(t, err, models.ErrDispatchFailed)
}
