// SitePulse - Smart Space Device and Site Health Monitoring
// Copyright 2026 SitePulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sitepulse/sitepulse

package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sitepulse/sitepulse/internal/config"
	"github.com/sitepulse/sitepulse/internal/directory"
	"github.com/sitepulse/sitepulse/internal/models"
)

// fakeDirectory is a counting in-memory directory.
type fakeDirectory struct {
	mu          sync.Mutex
	devices     map[string]models.Device
	leavesByGW  map[string][]models.Device
	bySite      map[string][]models.Device
	deviceCalls int
	leafCalls   int
	leafIDs     []string
	siteCalls   int
	failAll     bool
}

// leafQueried reports whether LeafDevices was ever called for gw.
func (f *fakeDirectory) leafQueried(gw string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.leafIDs {
		if id == gw {
			return true
		}
	}
	return false
}

func (f *fakeDirectory) Device(_ context.Context, id string) (*models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deviceCalls++
	if f.failAll {
		return nil, errors.New("directory down")
	}
	d, ok := f.devices[id]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return &d, nil
}

func (f *fakeDirectory) LeafDevices(_ context.Context, gw string) ([]models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leafCalls++
	f.leafIDs = append(f.leafIDs, gw)
	if f.failAll {
		return nil, errors.New("directory down")
	}
	leaves, ok := f.leavesByGW[gw]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return leaves, nil
}

func (f *fakeDirectory) SiteDevices(_ context.Context, site string) ([]models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.siteCalls++
	if f.failAll {
		return nil, errors.New("directory down")
	}
	devices, ok := f.bySite[site]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return devices, nil
}

// fakeTelemetry is a counting in-memory telemetry API.
type fakeTelemetry struct {
	mu           sync.Mutex
	readings     map[string]*models.HealthReading
	latest       map[string]*int64
	readingCalls int
	latestCalls  int
	calledIDs    []string
	failAll      bool
}

// queried reports whether any telemetry lookup was made for the device.
func (f *fakeTelemetry) queried(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, seen := range f.calledIDs {
		if seen == id {
			return true
		}
	}
	return false
}

func (f *fakeTelemetry) LastHealthReading(_ context.Context, id string) (*models.HealthReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readingCalls++
	f.calledIDs = append(f.calledIDs, id)
	if f.failAll {
		return nil, errors.New("telemetry down")
	}
	return f.readings[id], nil
}

func (f *fakeTelemetry) LastTelemetry(_ context.Context, id string) (*int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestCalls++
	f.calledIDs = append(f.calledIDs, id)
	if f.failAll {
		return nil, errors.New("telemetry down")
	}
	return f.latest[id], nil
}

// fakeStore is a synchronous Store used to observe fire-and-forget writes.
type fakeStore struct {
	mu      sync.Mutex
	entries map[string]interface{}
	sets    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]interface{})}
}

func (f *fakeStore) Get(key string) (interface{}, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	return v, ok
}

func (f *fakeStore) Set(key string, value interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	f.sets++
}

func (f *fakeStore) SetWithTTL(key string, value interface{}, _ time.Duration) {
	f.Set(key, value)
}

func (f *fakeStore) Delete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
}

func (f *fakeStore) waitForKey(t *testing.T, key string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := f.Get(key); ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("cache key %q was never written", key)
}

func testHealthConfig() config.HealthConfig {
	return config.HealthConfig{
		DeviceRecentlyOnlineMaxMinutes:        10,
		DeviceRecentlySentTelemetryMaxMinutes: 10,
		CacheTTLSeconds:                       10,
		CacheEnabled:                          true,
	}
}

// testWorld builds a directory and telemetry fixture where site-1 has one
// healthy gateway gw-1 with one healthy camera cam-1.
func testWorld() (*fakeDirectory, *fakeTelemetry) {
	gateway := models.Device{DeviceID: "gw-1", Kind: models.KindGateway, SiteID: "site-1", Online: true}
	camera := models.Device{DeviceID: "cam-1", Kind: models.KindCamera, SiteID: "site-1", EdgeDeviceID: "gw-1", Online: true}

	dir := &fakeDirectory{
		devices:    map[string]models.Device{"gw-1": gateway, "cam-1": camera},
		leavesByGW: map[string][]models.Device{"gw-1": {camera}},
		bySite:     map[string][]models.Device{"site-1": {gateway, camera}},
	}
	tel := &fakeTelemetry{
		readings: map[string]*models.HealthReading{
			"gw-1":  {DeviceID: "gw-1", EndTime: recentTimestamp()},
			"cam-1": {DeviceID: "cam-1", EndTime: recentTimestamp()},
		},
		latest: map[string]*int64{"cam-1": recentMillis()},
	}
	return dir, tel
}

func newTestService(dir DirectoryClient, tel TelemetryClient, store *fakeStore, cfg config.HealthConfig) *Service {
	s := NewService(dir, tel, store, cfg)
	s.now = func() time.Time { return testNow }
	return s
}

func TestDeviceHealthNotFound(t *testing.T) {
	dir, tel := testWorld()
	s := newTestService(dir, tel, newFakeStore(), testHealthConfig())
	if _, err := s.DeviceHealth(context.Background(), "ghost"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestDeviceHealthDirectoryFailurePropagates(t *testing.T) {
	dir, tel := testWorld()
	dir.failAll = true
	s := newTestService(dir, tel, newFakeStore(), testHealthConfig())
	_, err := s.DeviceHealth(context.Background(), "cam-1")
	if err == nil || errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("err = %v, want a request failure", err)
	}
}

func TestLeafDeviceHealth(t *testing.T) {
	dir, tel := testWorld()
	store := newFakeStore()
	s := newTestService(dir, tel, store, testHealthConfig())

	status, err := s.DeviceHealth(context.Background(), "cam-1")
	if err != nil {
		t.Fatalf("DeviceHealth: %v", err)
	}
	if status.Code != models.HealthGreen {
		t.Errorf("Code = %q, want GREEN", status.Code)
	}
	store.waitForKey(t, "leaf-cam-1")
}

func TestLeafDeviceHealthTelemetryDownFailsClosed(t *testing.T) {
	dir, tel := testWorld()
	tel.failAll = true
	s := newTestService(dir, tel, newFakeStore(), testHealthConfig())

	status, err := s.DeviceHealth(context.Background(), "cam-1")
	if err != nil {
		t.Fatalf("telemetry failure must degrade, not fail the request: %v", err)
	}
	if status.Code != models.HealthRed {
		t.Errorf("Code = %q, want RED when telemetry is unreachable", status.Code)
	}
}

func TestEdgeDeviceHealth(t *testing.T) {
	dir, tel := testWorld()
	store := newFakeStore()
	s := newTestService(dir, tel, store, testHealthConfig())

	status, err := s.DeviceHealth(context.Background(), "gw-1")
	if err != nil {
		t.Fatalf("DeviceHealth: %v", err)
	}
	if status.Code != models.HealthGreen || status.Reason != "Gateway online" {
		t.Errorf("got %+v", status)
	}
	store.waitForKey(t, "edge-gw-1")
}

func TestEdgeDeviceHealthStaleGatewaySkipsCameraQueries(t *testing.T) {
	dir, tel := testWorld()
	tel.readings["gw-1"] = &models.HealthReading{DeviceID: "gw-1", EndTime: staleTimestamp()}
	s := newTestService(dir, tel, newFakeStore(), testHealthConfig())

	status, err := s.DeviceHealth(context.Background(), "gw-1")
	if err != nil {
		t.Fatalf("DeviceHealth: %v", err)
	}
	if status.Code != models.HealthRed || status.Reason != "Gateway offline" {
		t.Errorf("got %+v", status)
	}
	if dir.leafCalls != 0 {
		t.Errorf("leafCalls = %d, want 0 for a stale gateway", dir.leafCalls)
	}
}

func TestEdgeDeviceHealthLeafListFailureFailsClosed(t *testing.T) {
	dir, tel := testWorld()
	delete(dir.leavesByGW, "gw-1")
	s := newTestService(dir, tel, newFakeStore(), testHealthConfig())

	// Unknown gateway in the leaf index means an empty camera list, which
	// is AMBER, not an error.
	status, err := s.DeviceHealth(context.Background(), "gw-1")
	if err != nil {
		t.Fatalf("DeviceHealth: %v", err)
	}
	if status.Code != models.HealthAmber || status.Reason != "No cameras" {
		t.Errorf("got %+v", status)
	}
}

func TestSiteHealth(t *testing.T) {
	dir, tel := testWorld()
	store := newFakeStore()
	s := newTestService(dir, tel, store, testHealthConfig())

	status, err := s.SiteHealth(context.Background(), "site-1")
	if err != nil {
		t.Fatalf("SiteHealth: %v", err)
	}
	if status.Code != models.HealthGreen || status.Reason != "Site online" {
		t.Errorf("got %+v", status)
	}
	store.waitForKey(t, "site-site-1")
}

func TestSiteHealthNotFound(t *testing.T) {
	dir, tel := testWorld()
	s := newTestService(dir, tel, newFakeStore(), testHealthConfig())
	if _, err := s.SiteHealth(context.Background(), "ghost"); !errors.Is(err, ErrSiteNotFound) {
		t.Fatalf("err = %v, want ErrSiteNotFound", err)
	}
}

func TestSiteHealthOfflineGatewayIsRed(t *testing.T) {
	dir, tel := testWorld()
	delete(tel.readings, "gw-1")
	s := newTestService(dir, tel, newFakeStore(), testHealthConfig())

	status, err := s.SiteHealth(context.Background(), "site-1")
	if err != nil {
		t.Fatalf("SiteHealth: %v", err)
	}
	if status.Code != models.HealthRed || status.Reason != "Gateway offline" || status.Action != "Expand site to review" {
		t.Errorf("got %+v", status)
	}
}

func TestSiteHealthIgnoresNonGatewayDevices(t *testing.T) {
	dir, tel := testWorld()
	dir.bySite["site-1"] = []models.Device{
		{DeviceID: "cam-1", Kind: models.KindCamera, SiteID: "site-1", EdgeDeviceID: "gw-1"},
	}
	s := newTestService(dir, tel, newFakeStore(), testHealthConfig())

	status, err := s.SiteHealth(context.Background(), "site-1")
	if err != nil {
		t.Fatalf("SiteHealth: %v", err)
	}
	if status.Code != models.HealthAmber || status.Reason != "No gateways" {
		t.Errorf("got %+v", status)
	}
}

func TestCacheHitAvoidsDownstreamCalls(t *testing.T) {
	dir, tel := testWorld()
	store := newFakeStore()
	s := newTestService(dir, tel, store, testHealthConfig())

	first, err := s.DeviceHealth(context.Background(), "cam-1")
	if err != nil {
		t.Fatalf("first DeviceHealth: %v", err)
	}
	store.waitForKey(t, "leaf-cam-1")

	dir.mu.Lock()
	deviceCallsAfterFirst := dir.deviceCalls
	dir.mu.Unlock()
	tel.mu.Lock()
	telemetryCallsAfterFirst := tel.readingCalls + tel.latestCalls
	tel.mu.Unlock()

	second, err := s.DeviceHealth(context.Background(), "cam-1")
	if err != nil {
		t.Fatalf("second DeviceHealth: %v", err)
	}
	if second != first {
		t.Errorf("cached verdict %+v differs from computed %+v", second, first)
	}

	// The identity lookup still happens; the cached verdict skips telemetry.
	dir.mu.Lock()
	if dir.deviceCalls != deviceCallsAfterFirst+1 {
		t.Errorf("deviceCalls = %d, want %d", dir.deviceCalls, deviceCallsAfterFirst+1)
	}
	dir.mu.Unlock()
	tel.mu.Lock()
	if got := tel.readingCalls + tel.latestCalls; got != telemetryCallsAfterFirst {
		t.Errorf("telemetry calls = %d, want %d (cache hit)", got, telemetryCallsAfterFirst)
	}
	tel.mu.Unlock()
}

// twoGatewayWorld builds site-1 with gw-1 (online but its camera never
// reported, so gw-1 rolls up RED) listed before healthy gw-2.
func twoGatewayWorld() (*fakeDirectory, *fakeTelemetry) {
	gw1 := models.Device{DeviceID: "gw-1", Kind: models.KindGateway, SiteID: "site-1"}
	gw2 := models.Device{DeviceID: "gw-2", Kind: models.KindGateway, SiteID: "site-1"}
	cam1 := models.Device{DeviceID: "cam-1", Kind: models.KindCamera, SiteID: "site-1", EdgeDeviceID: "gw-1"}
	cam2 := models.Device{DeviceID: "cam-2", Kind: models.KindCamera, SiteID: "site-1", EdgeDeviceID: "gw-2"}

	dir := &fakeDirectory{
		devices: map[string]models.Device{"gw-1": gw1, "gw-2": gw2, "cam-1": cam1, "cam-2": cam2},
		leavesByGW: map[string][]models.Device{
			"gw-1": {cam1},
			"gw-2": {cam2},
		},
		bySite: map[string][]models.Device{"site-1": {gw1, gw2, cam1, cam2}},
	}
	tel := &fakeTelemetry{
		readings: map[string]*models.HealthReading{
			"gw-1":  {DeviceID: "gw-1", EndTime: recentTimestamp()},
			"gw-2":  {DeviceID: "gw-2", EndTime: recentTimestamp()},
			"cam-2": {DeviceID: "cam-2", EndTime: recentTimestamp()},
		},
		latest: map[string]*int64{"cam-2": recentMillis()},
	}
	return dir, tel
}

func TestSiteHealthShortCircuitsOnRedGateway(t *testing.T) {
	dir, tel := twoGatewayWorld()
	s := newTestService(dir, tel, newFakeStore(), testHealthConfig())

	status, err := s.SiteHealth(context.Background(), "site-1")
	if err != nil {
		t.Fatalf("SiteHealth: %v", err)
	}
	if status.Code != models.HealthRed {
		t.Fatalf("Code = %q, want RED", status.Code)
	}
	if status.Reason != "Camera offline" || status.Action != "Expand site to review" {
		t.Errorf("got %+v, want the red gateway's reason with the site action", status)
	}

	// gw-1 is RED, so the site verdict is final before gw-2 is touched.
	if dir.leafQueried("gw-2") {
		t.Error("camera list for gw-2 was fetched after the site verdict was already RED")
	}
	if tel.queried("gw-2") {
		t.Error("telemetry for gw-2 was fetched after the site verdict was already RED")
	}
	if tel.queried("cam-2") {
		t.Error("telemetry for cam-2 was fetched after the site verdict was already RED")
	}
}

func TestEdgeHealthStopsTelemetryAfterRedCamera(t *testing.T) {
	dir, tel := twoGatewayWorld()
	// Put a never-reported camera ahead of a healthy one on the same
	// gateway; its RED verdict must end the scan.
	cam1 := dir.devices["cam-1"]
	cam2 := dir.devices["cam-2"]
	dir.leavesByGW["gw-1"] = []models.Device{cam1, cam2}

	s := newTestService(dir, tel, newFakeStore(), testHealthConfig())

	status, err := s.DeviceHealth(context.Background(), "gw-1")
	if err != nil {
		t.Fatalf("DeviceHealth: %v", err)
	}
	if status.Code != models.HealthRed || status.Reason != "Camera offline" {
		t.Fatalf("got %+v, want RED Camera offline", status)
	}
	if tel.queried("cam-2") {
		t.Error("telemetry for cam-2 was fetched after the gateway verdict was already RED")
	}
}

func TestSiteHealthUsesEdgeCache(t *testing.T) {
	dir, tel := testWorld()
	store := newFakeStore()
	store.Set("edge-gw-1", models.HealthStatus{Code: models.HealthGreen, Reason: "Gateway online", Action: "Expand gateway to review"})
	s := newTestService(dir, tel, store, testHealthConfig())

	status, err := s.SiteHealth(context.Background(), "site-1")
	if err != nil {
		t.Fatalf("SiteHealth: %v", err)
	}
	if status.Code != models.HealthGreen || status.Reason != "Site online" {
		t.Errorf("got %+v", status)
	}

	tel.mu.Lock()
	telemetryCalls := tel.readingCalls + tel.latestCalls
	tel.mu.Unlock()
	if telemetryCalls != 0 {
		t.Errorf("telemetry calls = %d, want 0 when the gateway verdict is cached", telemetryCalls)
	}
	dir.mu.Lock()
	leafCalls := dir.leafCalls
	dir.mu.Unlock()
	if leafCalls != 0 {
		t.Errorf("leafCalls = %d, want 0 when the gateway verdict is cached", leafCalls)
	}
}

func TestCacheDisabledGivesSameVerdicts(t *testing.T) {
	dirA, telA := testWorld()
	cached := newTestService(dirA, telA, newFakeStore(), testHealthConfig())

	cfg := testHealthConfig()
	cfg.CacheEnabled = false
	dirB, telB := testWorld()
	uncached := newTestService(dirB, telB, newFakeStore(), cfg)

	for _, id := range []string{"cam-1", "gw-1"} {
		a, errA := cached.DeviceHealth(context.Background(), id)
		b, errB := uncached.DeviceHealth(context.Background(), id)
		if errA != nil || errB != nil {
			t.Fatalf("errors: %v, %v", errA, errB)
		}
		if a != b {
			t.Errorf("device %s: cached %+v != uncached %+v", id, a, b)
		}
	}

	a, _ := cached.SiteHealth(context.Background(), "site-1")
	b, _ := uncached.SiteHealth(context.Background(), "site-1")
	if a != b {
		t.Errorf("site: cached %+v != uncached %+v", a, b)
	}
}
