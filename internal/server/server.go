package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/repairdesk/internal/config"
	"github.com/smallbiznis/repairdesk/internal/invoice"
	invoicedomain "github.com/smallbiznis/repairdesk/internal/invoice/domain"
	"github.com/smallbiznis/repairdesk/internal/observability"
	obslogger "github.com/smallbiznis/repairdesk/internal/observability/logger"
	obstracing "github.com/smallbiznis/repairdesk/internal/observability/tracing"
	"github.com/smallbiznis/repairdesk/internal/printsettings"
	"github.com/smallbiznis/repairdesk/internal/publicinvoice"
	publicinvoicedomain "github.com/smallbiznis/repairdesk/internal/publicinvoice/domain"
	"github.com/smallbiznis/repairdesk/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	printsettings.Module,
	invoice.Module,
	publicinvoice.Module,
	ratelimit.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.CustomRecoveryWithWriter(io.Discard, recoverHTML))
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.AdminToken == "" && cfg.IsProduction() {
				log.Warn("ADMIN_TOKEN is empty in production, back-office routes will reject every request")
			}
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config

	invoiceSvc       invoicedomain.Service
	publicInvoiceSvc publicinvoicedomain.Service
	settings         printsettings.Store
	limiter          ratelimit.Limiter
}

type ServerParams struct {
	fx.In

	Gin              *gin.Engine
	Cfg              config.Config
	InvoiceSvc       invoicedomain.Service
	PublicInvoiceSvc publicinvoicedomain.Service
	Settings         printsettings.Store
	Limiter          ratelimit.Limiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:           p.Gin,
		cfg:              p.Cfg,
		invoiceSvc:       p.InvoiceSvc,
		publicInvoiceSvc: p.PublicInvoiceSvc,
		settings:         p.Settings,
		limiter:          p.Limiter,
	}

	svc.registerInvoiceRoutes()
	svc.registerPublicRoutes()
	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerInvoiceRoutes() {
	invoices := s.engine.Group("/invoices", s.HTMLErrorMiddleware())

	// Access is checked in the handler: admin token, or phone and repair id.
	invoices.GET("/:id/print", s.PrintInvoice)
	invoices.GET("/:id/pdf", s.AdminRequired(), s.DownloadInvoicePDF)
}

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/public/invoices")

	public.GET("/print", s.HTMLErrorMiddleware(), s.PublicRateLimit(), s.PublicPrintInvoice)
	public.GET("/summary", ErrorHandlingMiddleware(), s.PublicRateLimit(), s.PublicInvoiceSummary)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", ErrorHandlingMiddleware(), s.AdminRequired())

	api.GET("/print-settings", s.GetPrintSettings)
	api.PUT("/print-settings", s.UpdatePrintSettings)
	api.GET("/print-settings/resolve", s.ResolvePrintSetting)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(ErrorHandlingMiddleware(), func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
