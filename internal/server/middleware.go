package server

import (
	"crypto/subtle"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/repairdesk/internal/observability/logger"
	"github.com/smallbiznis/repairdesk/internal/printsettings"
	"github.com/smallbiznis/repairdesk/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	HeaderAdminToken = "X-Admin-Token"

	contextRetryAfterKey = "retry_after_seconds"
)

// HTMLErrorMiddleware renders errors recorded with AbortWithError as a
// localized HTML page. Print settings are read once per request, so the page
// language comes from the load the handler already made.
func (s *Server) HTMLErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(printsettings.WithRequestCache(c.Request.Context()))
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}
		renderErrorPage(c, s.invoiceSvc.Language(c.Request.Context()), lastErr.Err)
	}
}

// recoverHTML turns a panic into a 500 page so the process keeps serving.
func recoverHTML(c *gin.Context, recovered any) {
	err := fmt.Errorf("%w: %v", ErrInternal, recovered)
	logger.FromContext(c.Request.Context()).Error("panic recovered", zap.Error(err), zap.Stack("stack"))
	_ = c.Error(err)
	renderErrorPage(c, "", err)
	c.Abort()
}

// AdminRequired accepts X-Admin-Token or a bearer token equal to ADMIN_TOKEN.
// An empty ADMIN_TOKEN disables the check outside production and denies
// every request in production.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.isAdmin(c) {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func (s *Server) isAdmin(c *gin.Context) bool {
	expected := s.cfg.AdminToken
	if expected == "" {
		return !s.cfg.IsProduction()
	}

	token := strings.TrimSpace(c.GetHeader(HeaderAdminToken))
	if token == "" {
		parts := strings.Fields(c.GetHeader("Authorization"))
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = parts[1]
		}
	}
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}

// PublicRateLimit limits public lookups per client ip and repair id.
func (s *Server) PublicRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.allowPublic(c) {
			return
		}
		c.Next()
	}
}

// allowPublic takes one token for the request. Limiter failures let the
// request through; they are logged.
func (s *Server) allowPublic(c *gin.Context) bool {
	if s.limiter == nil {
		return true
	}

	ctx := c.Request.Context()
	key := normalizeRateLimitEndpoint(c) + "|" + ratelimit.PublicKey(c.ClientIP(), c.Query("repairId"))
	res, err := s.limiter.Allow(ctx, key)
	if err != nil {
		logger.FromContext(ctx).Warn("public rate limit check failed", zap.Error(err))
		return true
	}
	if res.Allowed {
		return true
	}

	logger.FromContext(ctx).Warn("public rate limit exceeded",
		zap.String("endpoint", normalizeRateLimitEndpoint(c)),
		zap.Duration("retry_after", res.RetryAfter),
	)
	c.Set(contextRetryAfterKey, int(math.Ceil(res.RetryAfter.Seconds())))
	AbortWithError(c, ErrRateLimited)
	return false
}

func retryAfterHeader(c *gin.Context) string {
	seconds := c.GetInt(contextRetryAfterKey)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
