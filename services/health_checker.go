// acloudcenter/livekit-alien-curator-demo/services/health_checker.go
package services

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/acloudcenter/livekit-alien-curator-demo/log"
)

// ProviderStatus is the reachability of one upstream provider endpoint.
type ProviderStatus struct {
	Name         string    `json:"name"`
	Status       string    `json:"status"` // OK, BAD, N/A
	LastCheck    time.Time `json:"last_check"`
	ResponseTime int64     `json:"response_time"` // milliseconds
	Endpoint     string    `json:"endpoint"`
}

// HealthChecker polls the upstream providers the curator depends on, so the
// status endpoint can show whether speech and language services are reachable.
type HealthChecker struct {
	mu            sync.RWMutex
	providers     map[string]*ProviderStatus
	client        *http.Client
	checkInterval time.Duration
	stopChan      chan struct{}
	logger        log.Logger
}

// NewHealthChecker creates a provider health checker.
func NewHealthChecker(checkInterval time.Duration, logger log.Logger) *HealthChecker {
	return &HealthChecker{
		providers: make(map[string]*ProviderStatus),
		client: &http.Client{
			Timeout: 2 * time.Second, // Fast timeout for health checks
		},
		checkInterval: checkInterval,
		stopChan:      make(chan struct{}),
		logger:        logger,
	}
}

// RegisterProvider adds an upstream endpoint to monitor.
func (hc *HealthChecker) RegisterProvider(name, endpoint string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	hc.providers[name] = &ProviderStatus{
		Name:      name,
		Status:    "N/A",
		Endpoint:  endpoint,
		LastCheck: time.Now(),
	}

	hc.logger.Infof("Registered provider: %s (%s)", name, endpoint)
}

// Start begins monitoring all registered providers.
func (hc *HealthChecker) Start() {
	go hc.monitorLoop()
	hc.logger.Info("Provider health checker started")
}

// Stop halts the health checker.
func (hc *HealthChecker) Stop() {
	close(hc.stopChan)
	hc.logger.Info("Provider health checker stopped")
}

func (hc *HealthChecker) monitorLoop() {
	// Immediate first check
	hc.checkAllProviders()

	ticker := time.NewTicker(hc.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			hc.checkAllProviders()
		case <-hc.stopChan:
			return
		}
	}
}

func (hc *HealthChecker) checkAllProviders() {
	hc.mu.RLock()
	providers := make(map[string]string) // name -> endpoint
	for name, status := range hc.providers {
		providers[name] = status.Endpoint
	}
	hc.mu.RUnlock()

	for name, endpoint := range providers {
		go hc.checkProvider(name, endpoint)
	}
}

// checkProvider probes one endpoint. Anything below 500 counts as reachable;
// provider APIs answer unauthenticated probes with 401s.
func (hc *HealthChecker) checkProvider(name, endpoint string) {
	startTime := time.Now()

	resp, err := hc.client.Get(endpoint)
	responseTime := time.Since(startTime).Milliseconds()

	hc.mu.Lock()
	defer hc.mu.Unlock()

	status := hc.providers[name]
	status.LastCheck = time.Now()
	status.ResponseTime = responseTime

	if err != nil {
		status.Status = "BAD"
		hc.logger.Error(fmt.Sprintf("provider %s", name), err)
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		status.Status = "BAD"
		hc.logger.Infof("Provider %s degraded (HTTP %d)", name, resp.StatusCode)
		return
	}

	status.Status = "OK"
}

// GetProviderStatus returns the current status of one provider.
func (hc *HealthChecker) GetProviderStatus(name string) *ProviderStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	if status, ok := hc.providers[name]; ok {
		statusCopy := *status
		return &statusCopy
	}
	return nil
}

// GetAllProviders returns a snapshot of every monitored provider.
func (hc *HealthChecker) GetAllProviders() map[string]*ProviderStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	providersCopy := make(map[string]*ProviderStatus)
	for name, status := range hc.providers {
		statusCopy := *status
		providersCopy[name] = &statusCopy
	}
	return providersCopy
}
