package scholar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curelink/curelink/internal/config"
	"github.com/curelink/curelink/internal/infrastructure/monitoring"
	apperrors "github.com/curelink/curelink/pkg/errors"
	"github.com/curelink/curelink/pkg/logger"
)

var testMetrics = monitoring.NewMetrics()

func newScholarService(t *testing.T, providers ...config.ProviderConfig) *Service {
	t.Helper()
	cfg := &config.ScholarConfig{
		Providers:      providers,
		RequestTimeout: 2 * time.Second,
		CacheTTL:       time.Minute,
	}
	return NewService(cfg, testMetrics, logger.NewNoop()).(*Service)
}

func stubProvider(t *testing.T, hits *atomic.Int64, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestService_SearchMergesProviders(t *testing.T) {
	a := stubProvider(t, nil, `{"results":[{"title":"Metformin and longevity","year":2021}]}`, http.StatusOK)
	b := stubProvider(t, nil, `{"results":[{"title":"GLP-1 agonist outcomes","year":2023}]}`, http.StatusOK)

	svc := newScholarService(t,
		config.ProviderConfig{Name: "alpha", BaseURL: a.URL},
		config.ProviderConfig{Name: "beta", BaseURL: b.URL},
	)

	results, err := svc.Search(context.Background(), "metformin")
	require.NoError(t, err)
	require.Len(t, results, 2)

	providers := map[string]bool{}
	for _, r := range results {
		providers[r.Provider] = true
	}
	assert.True(t, providers["alpha"])
	assert.True(t, providers["beta"])
}

func TestService_SearchToleratesPartialFailure(t *testing.T) {
	ok := stubProvider(t, nil, `{"results":[{"title":"Statin adherence"}]}`, http.StatusOK)
	bad := stubProvider(t, nil, `oops`, http.StatusInternalServerError)

	svc := newScholarService(t,
		config.ProviderConfig{Name: "ok", BaseURL: ok.URL},
		config.ProviderConfig{Name: "bad", BaseURL: bad.URL},
	)

	results, err := svc.Search(context.Background(), "statins")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestService_SearchFailsWhenAllProvidersFail(t *testing.T) {
	bad := stubProvider(t, nil, `oops`, http.StatusBadGateway)

	svc := newScholarService(t, config.ProviderConfig{Name: "bad", BaseURL: bad.URL})

	_, err := svc.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUpstreamFailure))
}

func TestService_SearchCachesResults(t *testing.T) {
	var hits atomic.Int64
	srv := stubProvider(t, &hits, `{"results":[{"title":"Sleep and cognition"}]}`, http.StatusOK)

	svc := newScholarService(t, config.ProviderConfig{Name: "cached", BaseURL: srv.URL})

	_, err := svc.Search(context.Background(), "Sleep   AND cognition")
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), "sleep and cognition")
	require.NoError(t, err)

	assert.Equal(t, int64(1), hits.Load(), "normalized repeat queries are served from cache")
}

func TestService_SearchRejectsEmptyQuery(t *testing.T) {
	svc := newScholarService(t)

	_, err := svc.Search(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidRequest))
}
