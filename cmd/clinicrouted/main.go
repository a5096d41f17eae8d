package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/clinicroute/clinicroute/internal/config"
	"github.com/clinicroute/clinicroute/internal/domain"
	"github.com/clinicroute/clinicroute/internal/domain/location"
	v1 "github.com/clinicroute/clinicroute/internal/handler/v1"
	"github.com/clinicroute/clinicroute/internal/service"
	"github.com/clinicroute/clinicroute/internal/storage"
	"github.com/clinicroute/clinicroute/pkg/auth"
	"github.com/clinicroute/clinicroute/pkg/logger"
	"github.com/clinicroute/clinicroute/pkg/metrics"
	"github.com/clinicroute/clinicroute/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	m := metrics.NewCollector("clinicroute")

	store, err := storage.NewStore(cfg.Storage, log)
	if err != nil {
		return err
	}
	auditWriter, err := storage.NewAuditWriter(cfg.Storage)
	if err != nil {
		return err
	}
	defer auditWriter.Close()

	historyStore, err := storage.NewHistoryStore(cfg.Storage)
	if err != nil {
		return err
	}

	jwtManager := auth.NewJWTManager(cfg.JWT)

	auditSvc := service.NewAuditService(auditWriter, m, log)
	defer auditSvc.Shutdown()

	patientRepo := storage.NewPatientRepo(store)
	authSvc := service.NewAuthService(store, jwtManager, log)
	doctorSvc := service.NewDoctorService(store, store, auditSvc, m, log)
	patientSvc := service.NewPatientService(patientRepo, store, historyStore, auditSvc, log)
	appointSvc := service.NewAppointmentService(store, patientRepo, store, auditSvc, m, log)
	routingSvc := service.NewRoutingService(location.NewCityGraph(), store, appointSvc, m, log)

	if err := bootstrapAdmin(store, authSvc, log); err != nil {
		return err
	}

	router := v1.NewRouter(v1.RouterDeps{
		Config:         cfg,
		Log:            log,
		Metrics:        m,
		JWTManager:     jwtManager,
		AuthSvc:        authSvc,
		DoctorSvc:      doctorSvc,
		PatientSvc:     patientSvc,
		AppointmentSvc: appointSvc,
		RoutingSvc:     routingSvc,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}

// bootstrapAdmin creates the initial admin login when the user store is
// empty and ADMIN_PASSWORD is set. Without it a fresh deployment would
// have no way to mint further accounts.
func bootstrapAdmin(store *storage.Store, authSvc *service.AuthService, log *zap.Logger) error {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return nil
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}

	if _, err := store.GetUserByUsername(context.Background(), username); err == nil {
		return nil
	}

	user, err := authSvc.RegisterUser(context.Background(), username, password, domain.RoleAdmin, nil)
	if err != nil {
		return err
	}
	log.Info("bootstrap admin user created",
		zap.String("username", username),
		zap.String("user_id", user.ID.String()),
	)
	return nil
}
