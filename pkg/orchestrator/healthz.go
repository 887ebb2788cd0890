package orchestrator

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// StatusReporter is the read-only surface a running phase exposes to
// the health endpoint. The serve command's scheduled backfill calls
// Start before its first run and Update after each run; the phase
// functions themselves do not touch it, and Router's handlers only
// ever read it.
type StatusReporter struct {
	mu      sync.RWMutex
	phase   string
	started time.Time
	latest  Progress
}

// NewStatusReporter returns a StatusReporter with no phase recorded.
func NewStatusReporter() *StatusReporter {
	return &StatusReporter{}
}

// Start marks the beginning of a new phase run, resetting the reported
// progress.
func (r *StatusReporter) Start(phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = phase
	r.started = time.Now().UTC()
	r.latest = Progress{}
}

// Update overwrites the reported progress with the latest snapshot.
func (r *StatusReporter) Update(p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = p
}

type statusView struct {
	Phase     string    `json:"phase"`
	StartedAt time.Time `json:"started_at"`
	Progress  Progress  `json:"progress"`
}

func (r *StatusReporter) snapshot() statusView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return statusView{Phase: r.phase, StartedAt: r.started, Progress: r.latest}
}

// Router returns a gin engine exposing a read-only /healthz liveness
// probe and a /status endpoint reporting r's current phase progress,
// for the long-running backfill/enrich commands a supervisor might
// poll (spec §6's read-only progress endpoint).
func Router(r *StatusReporter) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, r.snapshot())
	})

	return engine
}
