package upstream

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// GenerateFunc produces and stores captions for a registered image.
type GenerateFunc func(ctx context.Context, imageID string) error

// Worker runs caption generation jobs asynchronously with bounded
// parallelism. The delay before each job keeps generation visibly async
// so clients exercise their poll loops.
type Worker struct {
	logger   *slog.Logger
	generate GenerateFunc
	delay    time.Duration

	jobs chan string
	g    errgroup.Group
	done chan struct{}
}

func NewWorker(logger *slog.Logger, limit int, delay time.Duration, generate GenerateFunc) *Worker {
	w := &Worker{
		logger:   logger,
		generate: generate,
		delay:    delay,
		jobs:     make(chan string, 64),
		done:     make(chan struct{}),
	}
	w.g.SetLimit(limit)
	return w
}

// Start dispatches queued jobs until Close is called.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		for imageID := range w.jobs {
			imageID := imageID
			w.g.Go(func() error {
				w.process(ctx, imageID)
				return nil
			})
		}
	}()
}

// Enqueue schedules caption generation for an image.
func (w *Worker) Enqueue(imageID string) {
	w.jobs <- imageID
}

func (w *Worker) process(ctx context.Context, imageID string) {
	timer := time.NewTimer(w.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		w.logger.Warn("Generation job canceled", "image_id", imageID)
		return
	case <-timer.C:
	}

	if err := w.generate(ctx, imageID); err != nil {
		w.logger.Error("Caption generation job failed",
			"image_id", imageID,
			"error", err,
		)
		return
	}
	w.logger.Info("Caption generation job completed", "image_id", imageID)
}

// Close stops accepting jobs and waits for in-flight generation to finish.
func (w *Worker) Close() error {
	close(w.jobs)
	<-w.done
	return w.g.Wait()
}
