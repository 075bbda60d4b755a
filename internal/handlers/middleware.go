package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	bearerScheme        = "Bearer"
	userIDKey           = "userId"
	tokenQueryParam     = "token"
)

// queryTokenMiddleware promotes ?token= to a Bearer header when none is set.
func (h *Handler) queryTokenMiddleware(c *gin.Context) {
	if c.GetHeader(authorizationHeader) == "" {
		if tok := c.Query(tokenQueryParam); tok != "" {
			c.Request.Header.Set(authorizationHeader, bearerScheme+" "+tok)
		}
	}
	c.Next()
}

// userIdMiddleware guards /api/v1: every door command and read needs a valid token.
func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerScheme || parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	userID, err := h.services.ParseToken(parts[1])
	if err != nil {
		if h.log != nil {
			h.log.Infow("auth_token_rejected", "path", c.FullPath(), "err", err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}
