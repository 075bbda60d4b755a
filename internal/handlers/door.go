package handlers

import (
	"errors"
	"net/http"

	"garage_opener/internal/door"
	"garage_opener/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	statusOK        = "ok"
	statusTargetSet = "target_set"

	errCommunication   = "service communication failure"
	errControllerDown  = "door controller is stopped"
	errSetTarget       = "failed to set target"
	errInvalidBodyPref = "invalid body: "
)

// Respond with a status and the state snapshot taken after the command.
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	resp["state"] = h.services.Monitoring.GetState(c.Request.Context())
	c.JSON(http.StatusOK, resp)
}

type targetRequest struct {
	Target string `json:"target" binding:"required"` // OPEN | CLOSED | 0 | 1
}

// SetTargetRequest is an exported model for Swagger docs of the setTarget payload.
type SetTargetRequest struct {
	// Target position. Allowed: OPEN, CLOSED, 0 (open), 1 (closed)
	Target string `json:"target" example:"OPEN"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
		"door":   h.doorName,
	})
}

// @Summary      Get door state
// @Tags         door
// @Produce      json
// @Success      200  {object}  models.DoorState
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/door/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.GetState(c.Request.Context()))
}

// @Summary      Get current position
// @Tags         door
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/door/current [get]
// @Security     BearerAuth
func (h *Handler) getCurrent(c *gin.Context) {
	st := h.services.Monitoring.GetState(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"current": st.Current})
}

// @Summary      Get target position
// @Tags         door
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/door/target [get]
// @Security     BearerAuth
func (h *Handler) getTarget(c *gin.Context) {
	st := h.services.Monitoring.GetState(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"target": st.Target})
}

// @Summary      Get obstruction flag
// @Description  There is no obstruction sensor; always false.
// @Tags         door
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/door/obstruction [get]
// @Security     BearerAuth
func (h *Handler) getObstruction(c *gin.Context) {
	st := h.services.Monitoring.GetState(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"obstructed": st.Obstructed})
}

// @Summary      List pending transitions
// @Tags         door
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, timers"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/door/timers [get]
// @Security     BearerAuth
func (h *Handler) getTimers(c *gin.Context) {
	timers := h.services.Monitoring.PendingTimers(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"count":  len(timers),
		"timers": timers,
	})
}

// @Summary      Set target position
// @Description  OPEN triggers the relay first; CLOSED never touches the relay.
// @Tags         door
// @Accept       json
// @Produce      json
// @Param        body  body   SetTargetRequest  true  "Target payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/door/target [post]
// @Security     BearerAuth
func (h *Handler) setTarget(c *gin.Context) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	target, err := models.ParseDoorPosition(req.Target)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Failures are logged where they happen; only map them to a status here.
	err = h.services.Door.SetTarget(c.Request.Context(), target)
	switch {
	case err == nil:
		h.respondWithStatusAndState(c, statusTargetSet, gin.H{"target": target})
	case errors.Is(err, door.ErrInvalidPosition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, door.ErrCommunicationFailure):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errCommunication})
	case errors.Is(err, door.ErrStopped):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errControllerDown})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": errSetTarget})
	}
}
