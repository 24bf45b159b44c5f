package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobboard/internal/auth"
	"github.com/justsurfingit/jobboard/internal/config"
	"github.com/justsurfingit/jobboard/internal/database"
	"github.com/justsurfingit/jobboard/internal/handlers"
	"github.com/justsurfingit/jobboard/internal/logging"
	"github.com/justsurfingit/jobboard/internal/metrics"
	"github.com/justsurfingit/jobboard/internal/middleware"
	"github.com/justsurfingit/jobboard/internal/notify"
	"github.com/justsurfingit/jobboard/internal/repository"
	"github.com/justsurfingit/jobboard/internal/server"
	"github.com/justsurfingit/jobboard/internal/services"
	"github.com/justsurfingit/jobboard/internal/storage"
	"github.com/justsurfingit/jobboard/internal/validation"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Provide(
			config.Load,
			logging.New,
			newDatabase,
			repository.NewRepositories,
			validation.NewStructSchema,
			newSchema,
			newMailer,
			newResumeStore,
			newLLMService,
			services.NewUserService,
			services.NewAdminService,
			services.NewSeekerService,
			services.NewCompanyService,
			services.NewJobService,
			handlers.NewUserHandler,
			handlers.NewAdminHandler,
			handlers.NewSeekerHandler,
			handlers.NewCompanyHandler,
			handlers.NewJobHandler,
			handlers.NewResumeHandler,
			newHandlers,
			newRateLimiter,
			metrics.New,
			server.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(startHTTPServer),
	)

	app.Run()
}

func newDatabase(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return database.Close(db)
		},
	})
	return db, nil
}

func newSchema(s *validation.StructSchema) validation.Schema {
	return s
}

// newMailer sends through Gmail when credentials are configured and logs the
// messages otherwise.
func newMailer(cfg config.Config, logger *zap.Logger) (notify.Mailer, error) {
	if cfg.GmailCredentialsFile == "" {
		logger.Warn("GMAIL_CREDENTIALS_FILE is empty, emails will only be logged")
		return notify.NewLogMailer(logger), nil
	}
	svc, err := auth.NewGmailService(context.Background(), cfg.GmailCredentialsFile, cfg.GmailTokenFile)
	if err != nil {
		return nil, fmt.Errorf("gmail: %w", err)
	}
	logger.Info("gmail service connected")
	return notify.NewGmailMailer(svc, cfg.MailFrom), nil
}

func newResumeStore(cfg config.Config, logger *zap.Logger) (services.ResumeStore, error) {
	if cfg.ResumeBucket == "" {
		logger.Warn("RESUME_BUCKET is empty, resume uploads disabled")
		return nil, nil
	}
	store, err := storage.New(context.Background(), storage.Config{
		Bucket:    cfg.ResumeBucket,
		Region:    cfg.ResumeS3Region,
		Endpoint:  cfg.ResumeS3Endpoint,
		PathStyle: cfg.ResumeS3PathStyle,
		URLTTL:    cfg.ResumeURLTTL,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func newLLMService(cfg config.Config, schema validation.Schema, logger *zap.Logger) (*services.LLMService, error) {
	return services.NewLLMService(context.Background(), cfg, schema, logger)
}

func newHandlers(
	users *handlers.UserHandler,
	admins *handlers.AdminHandler,
	seekers *handlers.SeekerHandler,
	companies *handlers.CompanyHandler,
	jobs *handlers.JobHandler,
	resumes *handlers.ResumeHandler,
) server.Handlers {
	return server.Handlers{
		Users:     users,
		Admins:    admins,
		Seekers:   seekers,
		Companies: companies,
		Jobs:      jobs,
		Resumes:   resumes,
	}
}

func newRateLimiter(cfg config.Config) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg.RateLimitRPM)
}

func startHTTPServer(lc fx.Lifecycle, sd fx.Shutdowner, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := srv.Listen()
			if err != nil {
				return err
			}
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				defer close(done)
				logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
				if err := srv.Serve(runCtx, ln); err != nil {
					logger.Error("http server stopped", zap.Error(err))
					if err := sd.Shutdown(fx.ExitCode(1)); err != nil {
						logger.Error("fx shutdown", zap.Error(err))
					}
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
