// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package telemetry

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker/v2"

	"github.com/sitepulse/sitepulse/internal/breaker"
	"github.com/sitepulse/sitepulse/internal/config"
	"github.com/sitepulse/sitepulse/internal/models"
)

// CircuitBreakerClient wraps a telemetry client with a circuit breaker so a
// failing telemetry API cannot stall every health evaluation.
type CircuitBreakerClient struct {
	client ClientInterface
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient creates a telemetry client protected by a circuit
// breaker with the shared settings from the breaker package.
func NewCircuitBreakerClient(cfg *config.TelemetryConfig) *CircuitBreakerClient {
	const cbName = "telemetry-api"
	return &CircuitBreakerClient{
		client: NewClient(cfg),
		cb:     breaker.New(cbName, nil),
		name:   cbName,
	}
}

// LastHealthReading delegates through the circuit breaker.
func (c *CircuitBreakerClient) LastHealthReading(ctx context.Context, deviceID string) (*models.HealthReading, error) {
	result, err := breaker.Execute(c.cb, c.name, func() (interface{}, error) {
		return c.client.LastHealthReading(ctx, deviceID)
	})
	if err != nil {
		return nil, err
	}
	reading, ok := result.(*models.HealthReading)
	if !ok && result != nil {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return reading, nil
}

// LastTelemetry delegates through the circuit breaker.
func (c *CircuitBreakerClient) LastTelemetry(ctx context.Context, deviceID string) (*int64, error) {
	result, err := breaker.Execute(c.cb, c.name, func() (interface{}, error) {
		return c.client.LastTelemetry(ctx, deviceID)
	})
	if err != nil {
		return nil, err
	}
	millis, ok := result.(*int64)
	if !ok && result != nil {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return millis, nil
}

// Ping bypasses the circuit breaker so readiness checks keep observing the
// real downstream state while the breaker is open.
func (c *CircuitBreakerClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}
