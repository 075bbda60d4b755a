package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"garage_opener/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errLogsLoad = "failed to load door history"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

var queryTimeLayouts = []string{time.RFC3339, layoutDateTime, layoutDate}

// historyQuery is the door history window. Bounds are inclusive; a date-only
// upper bound covers the whole day.
type historyQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
	Type string `form:"type"`
}

func (q historyQuery) filter() (service.LogFilter, error) {
	var f service.LogFilter
	var err error
	if q.From != "" {
		if f.From, err = parseQueryTime(q.From); err != nil {
			return f, fmt.Errorf("from: %w", err)
		}
	}
	if q.To != "" {
		if f.To, err = parseQueryTime(q.To); err != nil {
			return f, fmt.Errorf("to: %w", err)
		}
		if !strings.ContainsAny(q.To, "T ") {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond)
		}
	}
	f.Type = q.Type
	return f, nil
}

// @Summary      Door history
// @Description  Commands, state changes, relay failures and auto-closes. Bounds accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' covers the whole day.
// @Tags         logs
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2025-08-01)
// @Param        to    query   string  false  "End of range"  example(2025-08-31)
// @Param        type  query   string  false  "Event type"  Enums(COMMAND,STATE_CHANGE,RELAY_ERROR,AUTO_CLOSE)
// @Success      200   {object}  map[string]interface{}  "door, count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := q.filter()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), f)
	switch {
	case errors.Is(err, service.ErrInvalidLogFilter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		if h.log != nil {
			h.log.Errorw("door_history_failed", "err", err, "from", f.From, "to", f.To, "type", f.Type)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errLogsLoad})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"door":   h.doorName,
		"count":  len(events),
		"events": events,
	})
}

// parseQueryTime accepts any of queryTimeLayouts and returns UTC.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range queryTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'", s)
}
