package handlers

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitload/internal/models"
	"github.com/yourorg/transitload/internal/pipeline"
)

// StatusSource is what the handlers need from the queue.
type StatusSource interface {
	Status() pipeline.Status
}

var (
	setupMu sync.RWMutex
	source  StatusSource
)

// Setup wires the queue into the handlers; call before registering routes.
func Setup(src StatusSource) {
	setupMu.Lock()
	source = src
	setupMu.Unlock()
}

// Health reports process health.
func Health(c *fiber.Ctx) error {
	setupMu.RLock()
	src := source
	setupMu.RUnlock()

	services := make(map[string]string)
	if src == nil {
		services["queue"] = "not started"
	} else if st := src.Status(); st.Current != "" || st.Pending > 0 {
		services["queue"] = "running"
	} else {
		services["queue"] = "drained"
	}

	return c.JSON(models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Services:  services,
	})
}

// RunStatus reports queue progress.
func RunStatus(c *fiber.Ctx) error {
	setupMu.RLock()
	src := source
	setupMu.RUnlock()
	if src == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "queue not started")
	}
	st := src.Status()
	return c.JSON(models.RunStatusResponse{
		Pending:   st.Pending,
		Current:   st.Current,
		Attempted: st.Attempted,
		Completed: st.Completed,
		Failed:    st.Failed,
	})
}
