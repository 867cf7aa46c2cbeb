// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package directory

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/sitepulse/sitepulse/internal/breaker"
	"github.com/sitepulse/sitepulse/internal/config"
	"github.com/sitepulse/sitepulse/internal/models"
)

// CircuitBreakerClient wraps the directory client with a circuit breaker so
// a failing directory API cannot cascade into every health request.
// ErrNotFound is a normal outcome and never counts as a breaker failure.
//
// The breaker uses real time for its interval and timeout windows; unit
// tests exercise the wrapped client directly.
type CircuitBreakerClient struct {
	client ClientInterface
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient creates a directory client protected by a circuit
// breaker with the shared settings from the breaker package.
func NewCircuitBreakerClient(cfg *config.DirectoryConfig) *CircuitBreakerClient {
	const cbName = "device-directory"
	return &CircuitBreakerClient{
		client: NewClient(cfg),
		cb: breaker.New(cbName, func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		}),
		name: cbName,
	}
}

// execute wraps a directory call with circuit breaker protection.
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	return breaker.Execute(cbc.cb, cbc.name, fn)
}

// Device implements ClientInterface.
func (cbc *CircuitBreakerClient) Device(ctx context.Context, deviceID string) (*models.Device, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		return cbc.client.Device(ctx, deviceID)
	})
	if err != nil {
		return nil, err
	}
	device, ok := result.(*models.Device)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return device, nil
}

// LeafDevices implements ClientInterface.
func (cbc *CircuitBreakerClient) LeafDevices(ctx context.Context, edgeDeviceID string) ([]models.Device, error) {
	return cbc.deviceList(func() (interface{}, error) {
		return cbc.client.LeafDevices(ctx, edgeDeviceID)
	})
}

// SiteDevices implements ClientInterface.
func (cbc *CircuitBreakerClient) SiteDevices(ctx context.Context, siteID string) ([]models.Device, error) {
	return cbc.deviceList(func() (interface{}, error) {
		return cbc.client.SiteDevices(ctx, siteID)
	})
}

func (cbc *CircuitBreakerClient) deviceList(fn func() (interface{}, error)) ([]models.Device, error) {
	result, err := cbc.execute(fn)
	if err != nil {
		return nil, err
	}
	devices, ok := result.([]models.Device)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return devices, nil
}

// Ping implements ClientInterface. Pings bypass the breaker so readiness
// checks keep observing the real downstream state while the circuit is open.
func (cbc *CircuitBreakerClient) Ping(ctx context.Context) error {
	return cbc.client.Ping(ctx)
}
