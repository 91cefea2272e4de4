package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tasknotes/internal/api"
	"tasknotes/internal/config"
	"tasknotes/internal/logger"
	"tasknotes/internal/recurrence"
	"tasknotes/internal/repository"
	"tasknotes/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "tasknotes",
	Short: "Task and notes server with recurring task generation",
	Long: `tasknotes is a personal task/notes backend. It serves a JSON API for
todos, notes, attributes and recurring templates, and materializes concrete
tasks from recurring templates either on demand or on a schedule.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
}

// app holds everything a command needs after bootstrap.
type app struct {
	cfg      config.Config
	log      *zap.SugaredLogger
	db       *gorm.DB
	loc      *time.Location
	services api.Services
}

// newApp loads config and wires repositories and services.
func newApp() (*app, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(cfg.LogDir, cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	attrRepo := repository.NewAttributeRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	generationStore := repository.NewGenerationStore(db)

	var notifier *service.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		notifier, err = service.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID, log)
		if err != nil {
			return nil, fmt.Errorf("notifier: %w", err)
		}
	}

	engine := recurrence.NewEngine(generationStore, log)
	generationSvc := service.NewGenerationService(engine, loc, notifier, log)

	return &app{
		cfg: cfg,
		log: log,
		db:  db,
		loc: loc,
		services: api.Services{
			Auth:       service.NewAuthService(userRepo, attrRepo, cfg.JWTSecret, log),
			Todos:      service.NewTodoService(todoRepo, attrRepo),
			Notes:      service.NewNoteService(noteRepo),
			Attributes: service.NewAttributeService(attrRepo),
			Templates:  service.NewTemplateService(templateRepo, attrRepo),
			Generation: generationSvc,
		},
	}, nil
}

// close releases the database handle and flushes logs.
func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	a.log.Sync()
}
