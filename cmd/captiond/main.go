package main

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"

	"github.com/almostcrackd/caption-pipeline/internal/upstream"
	"github.com/almostcrackd/caption-pipeline/internal/upstream/events"
	"github.com/almostcrackd/caption-pipeline/pkg/config"
	"github.com/almostcrackd/caption-pipeline/pkg/logger"
)

func main() {
	startupLogger := logger.New(logger.Config{
		Level:  "info",
		Format: "text",
	})

	startupLogger.Info("Starting Captioning Service Emulator")

	cfg, err := config.LoadConfig(startupLogger)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	appLogger.Info("Configuration loaded",
		"env", cfg.Env,
		"signer", cfg.Emulator.SignerMode,
		"store", cfg.Emulator.StoreMode,
		"generation_delay", cfg.Emulator.GenerationDelay,
	)

	ctx := context.Background()

	var store upstream.ImageStore
	switch cfg.Emulator.StoreMode {
	case "firestore":
		fsClient, err := firestore.NewClient(ctx, cfg.Emulator.ProjectID)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer fsClient.Close()
		store = upstream.NewFirestoreStore(fsClient, cfg.Emulator.ImageCollection)
	default:
		store = upstream.NewMemoryStore()
	}

	var signer upstream.ObjectSigner
	var localSigner *upstream.LocalSigner
	switch cfg.Emulator.SignerMode {
	case "gcs":
		gcsClient, err := storage.NewClient(ctx)
		if err != nil {
			log.Fatalf("Failed to create GCS client: %v", err)
		}
		defer gcsClient.Close()
		signer = upstream.NewGCSSigner(gcsClient, cfg.Emulator.Bucket)
	default:
		localSigner = upstream.NewLocalSigner(cfg.Emulator.PublicBaseURL)
		signer = localSigner
	}

	var publisher events.Publisher
	if cfg.Emulator.ResultTopicID != "" && cfg.Emulator.ProjectID != "" {
		psClient, err := pubsub.NewClient(ctx, cfg.Emulator.ProjectID)
		if err != nil {
			log.Fatalf("Failed to create Pub/Sub client: %v", err)
		}
		publisher = events.NewPubSubPublisher(psClient, appLogger)
	} else {
		publisher = events.NewStdoutPublisher(appLogger)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Error("Error closing publisher", "error", err)
		}
	}()

	service := upstream.NewCaptionService(
		appLogger,
		store,
		signer,
		publisher,
		events.NewJSONEventSerializer(),
		cfg.Emulator,
	)
	service.Start(ctx)
	defer func() {
		if err := service.Close(); err != nil {
			appLogger.Error("Error draining generation worker", "error", err)
		}
	}()

	h := upstream.NewHandler(service, localSigner, appLogger)
	if err := upstream.Start(cfg, h, appLogger); err != nil {
		appLogger.Error("Emulator stopped", "error", err)
		log.Fatalf("Emulator stopped: %v", err)
	}
}
