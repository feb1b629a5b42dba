package webhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_trade_ema/internal/infrastructure/webhook"
)

func TestReporter_PostsFlooredValues(t *testing.T) {
	var got map[string]float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := webhook.NewReporter(srv.URL).Report(context.Background(), 21050.99, 20000.5)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"totalBalance": 21050, "currentMarketBTC": 20000}, got)
}

func TestReporter_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := webhook.NewReporter(srv.URL).Report(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
