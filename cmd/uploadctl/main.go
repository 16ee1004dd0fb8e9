package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/almostcrackd/caption-pipeline/internal/captioning"
	"github.com/almostcrackd/caption-pipeline/internal/uploader"
	"github.com/almostcrackd/caption-pipeline/pkg/config"
	"github.com/almostcrackd/caption-pipeline/pkg/logger"
)

var contentTypeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".heic": "image/heic",
}

func main() {
	var (
		filePath     = flag.String("file", "", "path of the image file to upload")
		endpoint     = flag.String("endpoint", "http://localhost:8080/api/pipeline", "pipeline proxy endpoint")
		token        = flag.String("token", os.Getenv("CAPTION_PIPELINE_TOKEN"), "bearer token for the proxy")
		contentType  = flag.String("content-type", "", "MIME type of the file (derived from extension if empty)")
		pollInterval = flag.Duration("poll-interval", 10*time.Second, "delay before each caption poll attempt")
		pollAttempts = flag.Int("poll-attempts", 12, "maximum caption poll attempts")
	)
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	appLogger := logger.New(logger.Config{
		Level:  "warn",
		Format: "text",
	})

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Failed to read file: %v", err)
	}

	mimeType := *contentType
	if mimeType == "" {
		mimeType = contentTypeByExtension[strings.ToLower(filepath.Ext(*filePath))]
	}

	up := uploader.New(
		uploader.NewHTTPProxyClient(*endpoint, *token),
		uploader.NewHTTPObjectWriter(),
		config.PollConfig{
			Interval:    *pollInterval,
			MaxAttempts: *pollAttempts,
		},
		func(state uploader.State, message string) {
			fmt.Println(message)
		},
		appLogger,
	)

	result, err := up.Run(context.Background(), uploader.Upload{
		ContentType: mimeType,
		Data:        data,
	})
	if err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}

	fmt.Printf("\nimageId: %s\ncdnUrl:  %s\n\nCaptions:\n", result.ImageID, result.CDNURL)
	for _, caption := range result.Captions {
		fmt.Printf("  - %s\n", captioning.CaptionText(caption))
	}

	raw, err := json.MarshalIndent(result.RawGenerate, "", "  ")
	if err == nil {
		fmt.Printf("\nRaw generate response:\n%s\n", raw)
	}
}
