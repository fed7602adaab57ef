package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/repairdesk/internal/observability/logger"
	"github.com/smallbiznis/repairdesk/internal/printsettings"
	"go.uber.org/zap"
)

const (
	settingsSourceFile     = "file"
	settingsSourceDefaults = "defaults"
)

func (s *Server) GetPrintSettings(c *gin.Context) {
	doc, err := s.settings.Raw(c.Request.Context())
	if errors.Is(err, printsettings.ErrSettingsNotFound) {
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"source":   settingsSourceDefaults,
			"settings": printsettings.DefaultDocument(),
		})
		return
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"source":   settingsSourceFile,
		"settings": doc,
	})
}

func (s *Server) UpdatePrintSettings(c *gin.Context) {
	var doc map[string]any
	if err := c.ShouldBindJSON(&doc); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.settings.Save(c.Request.Context(), doc); err != nil {
		AbortWithError(c, err)
		return
	}
	logger.FromContext(c.Request.Context()).Info("print settings updated", zap.Int("keys", len(doc)))

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"source":   settingsSourceFile,
		"settings": doc,
	})
}

// ResolvePrintSetting reports the effective value of a key and the tier it came from.
func (s *Server) ResolvePrintSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	settings, fallback := printsettings.LoadOrDefaults(ctx, s.settings, logger.FromContext(ctx))

	value, tier, found := settings.Lookup(key)
	if !found {
		if def, ok := c.GetQuery("default"); ok {
			value = def
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"key":      key,
		"value":    value,
		"source":   tier,
		"found":    found,
		"fallback": fallback,
	})
}
