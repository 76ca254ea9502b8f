package quality

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteScorer_Score(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/score", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload struct {
			Hypotheses []string `json:"hypotheses"`
			References []string `json:"references"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, []string{"a b"}, payload.Hypotheses)
		assert.Equal(t, []string{"a b"}, payload.References)

		json.NewEncoder(w).Encode(map[string]float64{"COMET": 0.85})
	}))
	defer srv.Close()

	scorer := NewRemoteScorer(srv.URL, time.Second)
	result, err := scorer.Score(context.Background(), []string{"a b"}, []string{"a b"})
	require.NoError(t, err)
	assert.InDelta(t, 0.85, result["COMET"], 1e-9)
}

func TestRemoteScorer_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	scorer := NewRemoteScorer(srv.URL, time.Second)
	_, err := scorer.Score(context.Background(), []string{"a"}, []string{"a"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "metric service error")
}

func TestRemoteScorer_BadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	scorer := NewRemoteScorer(srv.URL, time.Second)
	_, err := scorer.Score(context.Background(), []string{"a"}, []string{"a"})
	assert.Error(t, err)
}

func TestRemoteScorer_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scorer := NewRemoteScorer(srv.URL, time.Second)
	_, err := scorer.Score(ctx, []string{"a"}, []string{"a"})
	assert.Error(t, err)
}
