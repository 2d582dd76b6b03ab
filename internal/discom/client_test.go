package discom

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SuryaEnergia/api-ppa/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchTariffDecodesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tariffs/current", r.URL.Path)
		assert.Equal(t, "sekret", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rate": 7.8, "category": "LT-I", "slabs": [{"min": 0, "max": 100, "rate": 8.5}]}`))
	}))
	defer srv.Close()

	c := NewClient()
	payload, err := c.FetchTariff(context.Background(), Discom{Code: "MSEDCL", APIEndpoint: srv.URL, APIKey: "sekret"})
	require.NoError(t, err)
	assert.Equal(t, 7.8, payload.Rate)
	require.Len(t, payload.Slabs, 1)
	assert.Equal(t, 8.5, payload.Slabs[0].Rate)
}

func TestFetchTariffWrapsFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"rate": "eight"}`))
		}},
		{"nonsense rate", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"rate": -1}`))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			c := NewClient()
			_, err := c.FetchTariff(context.Background(), Discom{Code: "X", APIEndpoint: srv.URL})
			require.Error(t, err)

			var ese *apperrors.ExternalSourceError
			assert.True(t, errors.As(err, &ese))
		})
	}
}

func TestFetchTariffUnreachableHost(t *testing.T) {
	c := NewClient()
	_, err := c.FetchTariff(context.Background(), Discom{Code: "X", APIEndpoint: "http://127.0.0.1:1"})
	require.Error(t, err)

	var ese *apperrors.ExternalSourceError
	assert.True(t, errors.As(err, &ese))
}
