package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/markmywords/apps/api/echo"
	"github.com/trezcool/markmywords/core"
	"github.com/trezcool/markmywords/core/annotation"
	"github.com/trezcool/markmywords/core/document"
	"github.com/trezcool/markmywords/core/hierarchy"
	"github.com/trezcool/markmywords/core/session"
	"github.com/trezcool/markmywords/services/canvas"
	logsvc "github.com/trezcool/markmywords/services/logger"
	"github.com/trezcool/markmywords/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up storage; a document that cannot be loaded is fatal
	repo, err := database.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening %s storage: %v", conf.Storage.Engine, err), err)
	}
	defer func() {
		if err = repo.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	state, err := document.Open(context.Background(), repo, document.Seed(conf.Seed.Username, conf.Seed.Password), dbLogger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading document: %v", err), err)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	annotation.RegisterValidators(validate, translator)

	ctrl := session.NewController(state)
	hierarchySvc := hierarchy.NewService(state, validate, conf.Hierarchy.StrictReferences)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Session:    ctrl,
			Theme:      session.NewTheme(),
			Hierarchy:  hierarchySvc,
			Pad:        annotation.NewPad(hierarchySvc, ctrl),
			Raster:     canvas.NewRaster(conf.Canvas.Width, conf.Canvas.Height),
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		logger.Info(fmt.Sprintf("API listening on %s", conf.Server.Address))
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
