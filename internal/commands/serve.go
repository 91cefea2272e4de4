package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tasknotes/internal/api"
	"tasknotes/internal/service"
)

// newScheduler wires the unattended generation job. A blank cron spec
// disables it.
func newScheduler(app *app) (*service.SchedulerService, error) {
	if app.cfg.GenerateCron == "" {
		return nil, nil
	}
	scheduler := service.NewSchedulerService(app.loc)
	_, err := scheduler.ScheduleCron(app.cfg.GenerateCron, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		app.services.Generation.RunScheduled(jobCtx)
	})
	if err != nil {
		return nil, err
	}
	return scheduler, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and the scheduled generation job",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		router := api.NewRouter(app.services, app.cfg.InternalToken, app.log, app.cfg.Debug)
		srv := &http.Server{
			Addr:    app.cfg.ListenAddr,
			Handler: router,
		}

		scheduler, err := newScheduler(app)
		if err != nil {
			return err
		}
		if scheduler != nil {
			scheduler.Start()
			defer scheduler.Stop()
		}

		go func() {
			app.log.Infow("server listening", "addr", app.cfg.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.log.Fatalw("server failed", "error", err)
			}
		}()

		<-ctx.Done()
		app.log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		app.log.Info("shutdown complete")
		return nil
	},
}
