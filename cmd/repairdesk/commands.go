package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/smallbiznis/repairdesk/internal/config"
	"github.com/smallbiznis/repairdesk/internal/invoice"
	invoicedomain "github.com/smallbiznis/repairdesk/internal/invoice/domain"
	"github.com/smallbiznis/repairdesk/internal/migration"
	"github.com/smallbiznis/repairdesk/internal/observability"
	"github.com/smallbiznis/repairdesk/internal/printsettings"
	"github.com/smallbiznis/repairdesk/internal/server"
	"github.com/smallbiznis/repairdesk/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const startTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				config.Module,
				observability.Module,
				db.Module,
				migration.Module,
				server.Module,
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func newRenderCommand() *cobra.Command {
	var (
		id     int64
		output string
		asPDF  bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one invoice to HTML or PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id <= 0 {
				return errors.New("--id must be a positive invoice id")
			}

			var svc invoicedomain.Service
			app := fx.New(
				fx.NopLogger,
				config.Module,
				observability.Module,
				db.Module,
				printsettings.Module,
				invoice.Module,
				// stdout carries the document
				fx.Decorate(func(*zap.Logger) *zap.Logger { return zap.NewNop() }),
				fx.Populate(&svc),
			)
			return withApp(cmd.Context(), app, func(ctx context.Context) error {
				var content []byte
				if asPDF {
					doc, err := svc.RenderPDF(ctx, id)
					if err != nil {
						return err
					}
					content = doc.Content
				} else {
					html, err := svc.RenderHTML(ctx, id)
					if err != nil {
						return err
					}
					content = []byte(html)
				}
				return writeOutput(cmd.OutOrStdout(), output, content)
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "invoice id")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().BoolVar(&asPDF, "pdf", false, "render the PDF variant")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	var withSeed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				conn *gorm.DB
				cfg  config.Config
				log  *zap.Logger
			)
			app := fx.New(
				fx.NopLogger,
				config.Module,
				observability.Module,
				db.Module,
				fx.Populate(&conn, &cfg, &log),
			)
			return withApp(cmd.Context(), app, func(ctx context.Context) error {
				if withSeed {
					cfg.SeedDemoData = true
				}
				return migration.Prepare(conn, cfg, log.Named("migrations"))
			})
		},
	}
	cmd.Flags().BoolVar(&withSeed, "seed", false, "insert the demo customer, repair request and invoice")
	return cmd
}

// withApp starts app, runs fn and stops app again.
func withApp(ctx context.Context, app *fx.App, fn func(ctx context.Context) error) error {
	if err := app.Err(); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	runErr := fn(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), startTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func writeOutput(stdout io.Writer, path string, content []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(content)
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
