// Package clinic verifies patient identifiers against the clinic service
// exposed through the gateway.
package clinic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/variant-reports-service/internal/domain"
	"github.com/variant-reports-service/internal/logging"
	"github.com/variant-reports-service/internal/metrics"
)

// ServiceName names the clinic service in upstream errors
const ServiceName = "Clinic"

// Client checks that a patient exists in the clinic service. Every call
// makes at most one request and is never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
	logger     *logrus.Logger
}

// NewClient creates a clinic client. m may be nil.
func NewClient(config domain.ClinicConfig, m *metrics.Metrics, logger *logrus.Logger) *Client {
	baseURL := config.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		metrics: m,
		logger:  logger,
	}

	if config.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimit)
	}

	threshold := config.CircuitBreaker.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        ServiceName,
		MaxRequests: config.CircuitBreaker.MaxRequests,
		Interval:    config.CircuitBreaker.Interval,
		Timeout:     config.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A caller hanging up says nothing about the clinic's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return c
}

// VerifyPatient returns nil when the clinic answers 200 for patientID,
// domain.ErrPatientNotFound for any other status, and a *domain.UpstreamError
// when the clinic cannot be reached in time. authorization is forwarded
// unchanged when non-empty.
func (c *Client) VerifyPatient(ctx context.Context, patientID, authorization string) error {
	startTime := time.Now()
	log := logging.FromContext(ctx, c.logger).WithField("patient_id", patientID)

	status, err := c.lookup(ctx, patientID, authorization)
	elapsed := time.Since(startTime)

	switch {
	case err != nil:
		c.metrics.RecordClinicRequest(metrics.OutcomeUnavailable, elapsed.Seconds())
		log.WithFields(logrus.Fields{
			"error":       err,
			"duration_ms": elapsed.Milliseconds(),
		}).Error("Failed to contact clinic service")
		return &domain.UpstreamError{Service: ServiceName, Err: err}

	case status != http.StatusOK:
		c.metrics.RecordClinicRequest(metrics.OutcomeNotFound, elapsed.Seconds())
		log.WithFields(logrus.Fields{
			"status_code": status,
			"duration_ms": elapsed.Milliseconds(),
		}).Info("Clinic service did not confirm patient")
		return domain.ErrPatientNotFound
	}

	c.metrics.RecordClinicRequest(metrics.OutcomeConfirmed, elapsed.Seconds())
	log.WithField("duration_ms", elapsed.Milliseconds()).Debug("Patient confirmed")
	return nil
}

// lookup performs the request through the breaker. Only transport failures
// count against the breaker; any HTTP status is a successful exchange.
func (c *Client) lookup(ctx context.Context, patientID, authorization string) (int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.patientURL(patientID), nil)
		if err != nil {
			return nil, err
		}
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

		return resp.StatusCode, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

// patientURL appends the escaped id as the final path segment of the base URL
func (c *Client) patientURL(patientID string) string {
	return c.baseURL + url.PathEscape(patientID)
}

// BreakerState reports the circuit breaker state for health output
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}
