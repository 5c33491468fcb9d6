package gql

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophboard/internal/common"
	"github.com/gin-gonic/gin"
)

// corsMiddleware allows any origin; clients authenticate with bearer
// tokens, not cookies.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// recoveryMiddleware turns handler panics into a 500 and logs them.
func (s *Server) recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error(c.Request.Context(), "panic while serving request",
					"path", c.Request.URL.Path, "panic", fmt.Sprint(rec))
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// accessLogMiddleware logs each request and counts it per route.
func (s *Server) accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		s.metrics.ObserveHTTP(c.Request.Method, route, status)
		s.logger.Debug(c.Request.Context(), "request served",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
		)
	}
}

// callerMiddleware resolves the Authorization header once per request and
// stores the result (possibly nil) in the request context.
func (s *Server) callerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		caller := s.users.ResolveCaller(ctx, c.GetHeader(common.AuthorizationHeaderName))
		c.Request = c.Request.WithContext(WithCaller(ctx, caller))
		c.Next()
	}
}
