package mapbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/couchcryptid/pna-map-generator/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

const isochroneBody = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"contour":20,"color":"#6706ce"},"geometry":{"type":"Polygon","coordinates":[[[-1.6,53.7],[-1.4,53.7],[-1.4,53.9],[-1.6,53.7]]]}}]}`

func testClient(baseURL string, maxRetries int) *Client {
	return &Client{
		token:          testToken,
		httpClient:     &http.Client{Timeout: 5 * time.Second},
		baseURL:        baseURL,
		maxRetries:     maxRetries,
		initialBackoff: time.Millisecond,
		metrics:        observability.NewMetricsForTesting(),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Isochrone_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/driving/-1.548,53.796", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "20", q.Get("contours_minutes"))
		assert.Equal(t, "true", q.Get("polygons"))
		assert.Equal(t, "1", q.Get("denoise"))
		assert.Equal(t, testToken, q.Get("access_token"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = fmt.Fprint(w, isochroneBody)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 0)
	fc, err := c.Isochrone(context.Background(), leeds)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Polygon", fc.Features[0].Geometry.GeoJSONType())
}

func TestClient_Isochrone_EmptyFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = fmt.Fprint(w, `{"type":"FeatureCollection","features":[]}`)
	}))
	defer srv.Close()

	fc, err := testClient(srv.URL, 0).Isochrone(context.Background(), leeds)
	require.NoError(t, err)
	assert.Empty(t, fc.Features)
}

func TestClient_Isochrone_OKBodyShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "features omitted", body: `{"type":"FeatureCollection"}`},
		{name: "features null", body: `{"type":"FeatureCollection","features":null}`},
		{name: "empty object", body: `{}`, wantErr: true},
		{name: "wrong type", body: `{"type":"Feature","geometry":null}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.Header().Set(headerContentType, contentTypeJSON)
				_, _ = fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			fc, err := testClient(srv.URL, 2).Isochrone(context.Background(), leeds)
			assert.Equal(t, int32(1), calls.Load())
			if tt.wantErr {
				var extErr *domain.ExternalServiceError
				require.True(t, errors.As(err, &extErr))
				assert.Contains(t, err.Error(), "decode response")
				return
			}
			require.NoError(t, err)
			require.NotNil(t, fc)
			assert.Empty(t, fc.Features)
		})
	}
}

func TestClient_Isochrone_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = fmt.Fprint(w, isochroneBody)
		}
	}))
	defer srv.Close()

	fc, err := testClient(srv.URL, 2).Isochrone(context.Background(), leeds)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Isochrone_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 2).Isochrone(context.Background(), leeds)

	var extErr *domain.ExternalServiceError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, http.StatusBadGateway, extErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Isochrone_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, `{"message":"Not Authorized - Invalid Token"}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 3).Isochrone(context.Background(), leeds)

	var extErr *domain.ExternalServiceError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, http.StatusUnauthorized, extErr.StatusCode)
	assert.Contains(t, err.Error(), "Not Authorized - Invalid Token")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Isochrone_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "not json")
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 2).Isochrone(context.Background(), leeds)

	var extErr *domain.ExternalServiceError
	require.True(t, errors.As(err, &extErr))
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Isochrone_TokenRedactedFromTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	_, err := testClient(baseURL, 0).Isochrone(context.Background(), leeds)
	require.Error(t, err)

	var extErr *domain.ExternalServiceError
	require.True(t, errors.As(err, &extErr))
	assert.Zero(t, extErr.StatusCode)
	assert.NotContains(t, err.Error(), testToken)
	assert.Contains(t, err.Error(), "REDACTED")
}

func TestClient_Isochrone_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL, 5).Isochrone(ctx, leeds)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRedactToken(t *testing.T) {
	got := redactToken("https://api.mapbox.com/isochrone/v1/mapbox/driving/1,2?access_token=secret&polygons=true")
	assert.NotContains(t, got, "secret")
	assert.Contains(t, got, "access_token=REDACTED")
	assert.Contains(t, got, "polygons=true")
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Forbidden", errorMessage([]byte(`{"message":"Forbidden"}`)))
	assert.Equal(t, "plain text", errorMessage([]byte("plain text\n")))
	assert.Equal(t, "empty response body", errorMessage(nil))
}
