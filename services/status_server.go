// acloudcenter/livekit-alien-curator-demo/services/status_server.go
package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/acloudcenter/livekit-alien-curator-demo/cache"
	"github.com/acloudcenter/livekit-alien-curator-demo/config"
	"github.com/acloudcenter/livekit-alien-curator-demo/log"
	"github.com/acloudcenter/livekit-alien-curator-demo/room"
	"github.com/acloudcenter/livekit-alien-curator-demo/system"
	"github.com/acloudcenter/livekit-alien-curator-demo/utils"
)

const (
	visitorTokenTTL          = 15 * time.Minute
	defaultTranscriptHistory = 20
)

// SessionStateFunc reports the conversation loop's current state.
type SessionStateFunc func() string

// StatusServer exposes the curator's status, provider health, and a visitor
// token endpoint for the demo frontend.
type StatusServer struct {
	startTime     time.Time
	cfg           *config.Config
	version       string
	healthChecker *HealthChecker
	db            cache.Cache
	sessionState  SessionStateFunc
	logger        log.Logger
}

// NewStatusServer creates a new status server. The db may be nil when caching
// is off.
func NewStatusServer(cfg *config.Config, version string, healthChecker *HealthChecker, db cache.Cache, sessionState SessionStateFunc, logger log.Logger) *StatusServer {
	return &StatusServer{
		startTime:     time.Now(),
		cfg:           cfg,
		version:       version,
		healthChecker: healthChecker,
		db:            db,
		sessionState:  sessionState,
		logger:        logger,
	}
}

// Start begins the HTTP status server.
func (ss *StatusServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", ss.handleStatus)
	mux.HandleFunc("/health", ss.handleHealth)
	mux.HandleFunc("/providers", ss.handleProviders)
	mux.HandleFunc("/transcripts", ss.handleTranscripts)
	mux.HandleFunc("/token", ss.handleToken)

	addr := fmt.Sprintf("127.0.0.1:%d", ss.cfg.Status.Port)
	ss.logger.Infof("Starting status server on http://%s", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			ss.logger.Error("status server", err)
		}
	}()

	return nil
}

// handleStatus returns detailed service status.
func (ss *StatusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(ss.startTime)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	metrics := utils.GetMetrics()
	metrics["goroutines"] = runtime.NumGoroutine()
	metrics["memory_alloc_mb"] = float64(m.Alloc) / 1024 / 1024
	metrics["memory_sys_mb"] = float64(m.Sys) / 1024 / 1024
	metrics["gc_runs"] = m.NumGC

	if cpuUsage, err := system.GetCPUUsage(); err == nil {
		metrics["cpu_percent"] = cpuUsage
	}
	if memUsage, err := system.GetMemoryUsage(); err == nil {
		metrics["memory_percent"] = memUsage
	}

	status := map[string]interface{}{
		"service":       "livekit-alien-curator-demo",
		"status":        "operational",
		"version":       ss.version,
		"room":          ss.cfg.LiveKit.Room,
		"identity":      ss.cfg.LiveKit.Identity,
		"session_state": ss.sessionState(),
		"uptime":        uptime.String(),
		"timestamp":     time.Now().Format(time.RFC3339),
		"metrics":       metrics,
		"providers":     ss.healthChecker.GetAllProviders(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		ss.logger.Error("encoding status", err)
	}
}

// handleHealth returns a simple health check (for load balancers). The cache
// is soft state, so a dead Redis degrades the report without failing it.
func (ss *StatusServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	cacheStatus := "off"
	if ss.db != nil {
		cacheStatus = "ok"
		if err := ss.db.Ping(); err != nil {
			cacheStatus = "down"
			status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"cache":  cacheStatus,
	}); err != nil {
		ss.logger.Error("encoding health", err)
	}
}

// handleTranscripts returns the most recent transcript lines for the room,
// newest first.
func (ss *StatusServer) handleTranscripts(w http.ResponseWriter, r *http.Request) {
	if ss.db == nil {
		http.Error(w, "cache is not configured", http.StatusServiceUnavailable)
		return
	}

	n := int64(defaultTranscriptHistory)
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			http.Error(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	lines, err := ss.db.RecentTranscripts(ss.cfg.LiveKit.Room, n)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Entries are stored as JSON, so pass them through untouched.
	entries := make([]json.RawMessage, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, json.RawMessage(line))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"room":        ss.cfg.LiveKit.Room,
		"transcripts": entries,
		"count":       len(entries),
	}); err != nil {
		ss.logger.Error("encoding transcripts", err)
	}
}

// handleProviders returns the status of all monitored providers.
func (ss *StatusServer) handleProviders(w http.ResponseWriter, r *http.Request) {
	providers := ss.healthChecker.GetAllProviders()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"providers": providers,
		"count":     len(providers),
	}); err != nil {
		ss.logger.Error("encoding providers", err)
	}
}

// handleToken mints a short-lived room-join token for a visitor identity.
func (ss *StatusServer) handleToken(w http.ResponseWriter, r *http.Request) {
	identity := r.URL.Query().Get("identity")
	token, err := room.MintVisitorToken(&ss.cfg.LiveKit, identity, visitorTokenTTL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"token": token,
		"room":  ss.cfg.LiveKit.Room,
		"url":   ss.cfg.LiveKit.URL,
	}); err != nil {
		ss.logger.Error("encoding token", err)
	}
}
