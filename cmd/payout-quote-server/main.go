package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/payout-quote/internal/config"
	"github.com/iwvelando/payout-quote/internal/credentials"
	"github.com/iwvelando/payout-quote/internal/export"
	"github.com/iwvelando/payout-quote/internal/gate"
	"github.com/iwvelando/payout-quote/internal/lead"
	"github.com/iwvelando/payout-quote/internal/logging"
	"github.com/iwvelando/payout-quote/internal/mailer"
	"github.com/iwvelando/payout-quote/internal/postal"
	"github.com/iwvelando/payout-quote/internal/server"
	"github.com/iwvelando/payout-quote/internal/session"
	"github.com/iwvelando/payout-quote/internal/workflow"
	"github.com/iwvelando/payout-quote/pkg/constants"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := loadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	srvCfg, err := server.LoadConfig(*serverConfigLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfigLocation, err)
		os.Exit(1)
	}

	// server logging settings win over the application's
	loggingConfig := conf.Logging
	if srvCfg.Logging.Level != "" {
		loggingConfig.Level = srvCfg.Logging.Level
	}
	if srvCfg.Logging.Format != "" {
		loggingConfig.Format = srvCfg.Logging.Format
	}
	if srvCfg.Logging.OutputFile != "" {
		loggingConfig.OutputFile = srvCfg.Logging.OutputFile
	}
	logger, err := logging.New(loggingConfig, *logLevel, "payout-quote-server")
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	handler, sessions, err := build(logger, conf, srvCfg)
	if err != nil {
		logger.Fatal("failed to initialize server",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sessions.Run(ctx, sweepInterval)

	httpServer := &http.Server{
		Addr:              srvCfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "main"),
			zap.String("address", srvCfg.Address),
			zap.String("version", version),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	case <-ctx.Done():
		logger.Info("shutting down",
			zap.String("op", "main"),
		)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}

// build wires the credential provider, postal table, mail dispatch and
// workflow into the HTTP handler.
func build(logger *zap.Logger, conf *config.Configuration, srvCfg *server.Config) (http.Handler, *session.Store, error) {
	secrets, err := credentials.NewEnvProvider(conf.Credentials.EnvFiles...)
	if err != nil {
		return nil, nil, err
	}

	cities, err := postal.Load(logging.Component(logger, "postal"), conf.Postal.File)
	if err != nil {
		return nil, nil, err
	}

	smtp, err := mailer.New(logging.Component(logger, "mailer"), mailer.Config{
		Host:           conf.Mail.Host,
		Port:           conf.Mail.Port,
		UsernameSecret: conf.Mail.UsernameSecret,
		PasswordSecret: conf.Mail.PasswordSecret,
		Timeout:        conf.Mail.Timeout,
	}, secrets)
	if err != nil {
		return nil, nil, fmt.Errorf("mail transport: %w", err)
	}

	location, err := time.LoadLocation(constants.NotificationTimeZone)
	if err != nil {
		logger.Warn("time zone unavailable, using UTC",
			zap.String("op", "main.build"),
			zap.String("zone", constants.NotificationTimeZone),
			zap.Error(err),
		)
		location = time.UTC
	}

	dispatcher, err := lead.NewDispatcher(logging.Component(logger, "lead"), lead.DispatcherConfig{
		From:          conf.Mail.From,
		To:            conf.Mail.To,
		Cc:            conf.Mail.Cc,
		SubjectPrefix: conf.Mail.SubjectPrefix,
		Timeout:       conf.Mail.Timeout,
		Location:      location,
	}, smtp, export.LeadAttachment)
	if err != nil {
		return nil, nil, fmt.Errorf("lead dispatch: %w", err)
	}

	key, err := signingKey(logger, secrets)
	if err != nil {
		return nil, nil, err
	}

	sessions := session.NewStore(logging.Component(logger, "session"), srvCfg.SessionLifetime())
	wf := workflow.New(logging.Component(logger, "workflow"),
		gate.NewController(logging.Component(logger, "gate"), secrets, conf.Gate.SecretName),
		conf.Quote,
		cities,
		dispatcher,
	)

	handler, err := server.NewHandler(logging.Component(logger, "http"), server.Options{
		Workflow:    wf,
		Sessions:    sessions,
		Cities:      cities,
		SigningKey:  key,
		SessionTTL:  srvCfg.SessionLifetime(),
		MaxBodySize: srvCfg.BodySizeBytes(),
		Version:     version,
	})
	if err != nil {
		return nil, nil, err
	}
	return handler, sessions, nil
}

// signingKey returns the configured session key, or a random one that lives
// as long as the process.
func signingKey(logger *zap.Logger, secrets credentials.Provider) ([]byte, error) {
	key, err := secrets.GetSecret(constants.SessionKeySecretName)
	if err == nil {
		return []byte(key), nil
	}
	if !errors.Is(err, credentials.ErrNotFound) {
		return nil, err
	}

	logger.Warn("no session key configured, sessions will not survive a restart",
		zap.String("op", "main.signingKey"),
		zap.String("secret", constants.SessionKeySecretName),
	)
	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}
	return random, nil
}

// loadConfiguration reads the config file, falling back to built-in defaults
// when the default file is absent.
func loadConfiguration(path string) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(path)
	if err == nil {
		return conf, nil
	}
	if path == constants.DefaultConfigFile {
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			return config.LoadDefaults()
		}
	}
	return nil, err
}
