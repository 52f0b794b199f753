package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/db"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/logging"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/metrics"
)

const statusPushInterval = 5 * time.Second

/* SystemHandlers serves operator status views, as a one-shot snapshot and as
   a websocket stream */
type SystemHandlers struct {
	queries  *db.Queries
	logger   *logging.Logger
	upgrader websocket.Upgrader
	started  time.Time
}

/* NewSystemHandlers creates new system handlers. Origin checking happens in
   the security middleware before the upgrade, so the upgrader accepts all. */
func NewSystemHandlers(queries *db.Queries, logger *logging.Logger) *SystemHandlers {
	return &SystemHandlers{
		queries: queries,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		started: time.Now(),
	}
}

/* Status returns a point-in-time system snapshot */
func (h *SystemHandlers) Status(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, h.statusPayload(r), http.StatusOK)
}

/* StatusStream upgrades to a websocket and pushes snapshots until the client
   disconnects */
func (h *SystemHandlers) StatusStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("WebSocket upgrade failed", err, map[string]interface{}{
				"remote_addr": r.RemoteAddr,
			})
		}
		return
	}
	defer conn.Close()

	// Drain client frames so close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statusPushInterval)
	defer ticker.Stop()

	if err := conn.WriteJSON(h.statusPayload(r)); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(h.statusPayload(r)); err != nil {
				return
			}
		}
	}
}

func (h *SystemHandlers) statusPayload(r *http.Request) map[string]interface{} {
	payload := map[string]interface{}{
		"system":         metrics.CollectSystemSnapshot(),
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"database":       "ok",
	}

	if err := h.queries.GetDB().PingContext(r.Context()); err != nil {
		payload["database"] = "unreachable"
	}

	if count, err := h.queries.CountOpportunities(r.Context()); err == nil {
		payload["opportunity_count"] = count
	}

	return payload
}

/* Health is the unguarded liveness probe */
func Health(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

/* Readiness reports whether the database is reachable */
func (h *SystemHandlers) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := h.queries.GetDB().PingContext(r.Context()); err != nil {
		WriteError(w, http.StatusServiceUnavailable, fmt.Errorf("database unreachable"), nil)
		return
	}
	WriteSuccess(w, map[string]interface{}{"status": "ready"}, http.StatusOK)
}
