package handlers

import (
	"errors"
	"net/http"

	"garage_opener/internal/repository"

	"github.com/gin-gonic/gin"
)

// operatorCredentials identifies a person allowed to drive the door.
type operatorCredentials struct {
	Username string `json:"username" binding:"required,max=64"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) bindOperator(c *gin.Context) (operatorCredentials, bool) {
	var in operatorCredentials
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return in, false
	}
	return in, true
}

// @Summary      Register a door operator
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body   operatorCredentials  true  "Credentials"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	in, ok := h.bindOperator(c)
	if !ok {
		return
	}

	id, err := h.services.SignUp(in.Username, in.Password)
	switch {
	case errors.Is(err, repository.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
	case err != nil:
		if h.log != nil {
			h.log.Warnw("operator_sign_up_failed", "username", in.Username, "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.log != nil {
			h.log.Infow("operator_registered", "username", in.Username, "id", id)
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

// @Summary      Sign in and receive a door API token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body   operatorCredentials  true  "Credentials"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	in, ok := h.bindOperator(c)
	if !ok {
		return
	}

	token, err := h.services.GenerateToken(in.Username, in.Password)
	if err != nil {
		// one answer for unknown user and wrong password
		if h.log != nil {
			h.log.Infow("operator_sign_in_failed", "username", in.Username, "err", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
