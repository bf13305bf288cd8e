package mapbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/couchcryptid/pna-map-generator/internal/observability"
	"github.com/paulmach/orb/geojson"
)

const serviceName = "mapbox isochrone"

// maxErrorBody caps how much of an error response is kept in the error message.
const maxErrorBody = 512

// Client implements domain.IsochroneProvider using the Mapbox Isochrone API.
type Client struct {
	token          string
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	initialBackoff time.Duration
	metrics        *observability.Metrics
	logger         *slog.Logger
}

// NewClient creates a Mapbox isochrone client. Requests that fail with a
// network error, 429 or 5xx are retried up to maxRetries times.
func NewClient(token string, timeout time.Duration, maxRetries int, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:        "https://api.mapbox.com/isochrone/v1/mapbox",
		maxRetries:     maxRetries,
		initialBackoff: 250 * time.Millisecond,
		metrics:        metrics,
		logger:         logger,
	}
}

// Isochrone fetches the polygon reachable from a point within req.Minutes.
// An empty feature collection is a valid answer.
func (c *Client) Isochrone(ctx context.Context, req domain.IsochroneRequest) (*geojson.FeatureCollection, error) {
	// Mapbox uses lon,lat order.
	u := fmt.Sprintf("%s/%s/%s,%s", c.baseURL, url.PathEscape(string(req.Mode)),
		strconv.FormatFloat(req.Lon, 'f', -1, 64), strconv.FormatFloat(req.Lat, 'f', -1, 64))
	params := url.Values{
		"contours_minutes": {strconv.Itoa(req.Minutes)},
		"polygons":         {"true"},
		"denoise":          {"1"},
		"access_token":     {c.token},
	}
	fullURL := u + "?" + params.Encode()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)

	var fc *geojson.FeatureCollection
	op := func() error {
		var err error
		fc, err = c.doRequest(ctx, fullURL, string(req.Mode))
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Debug("retrying isochrone request",
			"profile", req.Mode,
			"minutes", req.Minutes,
			"wait", wait,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		var extErr *domain.ExternalServiceError
		if errors.As(err, &extErr) {
			return nil, extErr
		}
		return nil, &domain.ExternalServiceError{Service: serviceName, Err: err}
	}
	return fc, nil
}

// doRequest performs one HTTP attempt. Errors that must not be retried are
// wrapped with backoff.Permanent.
func (c *Client) doRequest(ctx context.Context, fullURL, profile string) (*geojson.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", c.redact(err)))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.IsochroneAPIDuration.WithLabelValues(profile).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: serviceName, Err: c.redact(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		extErr := &domain.ExternalServiceError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Err:        errors.New(errorMessage(body)),
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, extErr
		}
		return nil, backoff.Permanent(extErr)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: serviceName, Err: fmt.Errorf("read response: %w", err)}
	}
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, backoff.Permanent(&domain.ExternalServiceError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		})
	}
	return fc, nil
}

// redact strips the access token from transport errors, which embed the
// request URL.
func (c *Client) redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redactToken(urlErr.URL)
	}
	if c.token != "" && strings.Contains(err.Error(), c.token) {
		return errors.New(strings.ReplaceAll(err.Error(), c.token, "REDACTED"))
	}
	return err
}

func redactToken(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparsable url)"
	}
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// errorMessage extracts Mapbox's {"message": "..."} error text, falling back
// to the raw body.
func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return e.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return "empty response body"
}
