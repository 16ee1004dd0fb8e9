package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/almostcrackd/caption-pipeline/internal/captioning"
	"github.com/almostcrackd/caption-pipeline/pkg/config"
	"github.com/almostcrackd/caption-pipeline/pkg/errors"
)

// ExhaustedMessage is surfaced when every poll attempt comes back
// processing-like without captions.
const ExhaustedMessage = "Caption generation is still processing on staging. Please retry in 30-60 seconds."

// extraProcessingPhrases widens the proxy's classifier for responses the
// orchestrator sees through gateways and CDNs sitting in front of it.
var extraProcessingPhrases = []string{
	"timed out",
	"gateway timeout",
	"cloudfront",
	"request could not be satisfied",
	"error inserting captions",
}

// Upload is one user-selected file: declared MIME type plus raw bytes.
// Consumed once per run, never mutated.
type Upload struct {
	ContentType string
	Data        []byte
}

// Result is the terminal output of a successful run.
type Result struct {
	ImageID     string
	CDNURL      string
	Captions    []interface{}
	RawGenerate interface{}
}

// ProgressFunc receives the state and a user-facing message before each
// step or poll attempt begins. Status only; never correctness-bearing.
type ProgressFunc func(state State, message string)

// Uploader drives one file through presign, byte upload, register, and
// generate-with-poll-fallback. Steps are strictly sequential; any failure
// is terminal for the run.
type Uploader struct {
	proxy    ProxyClient
	objects  ObjectWriter
	policy   config.PollConfig
	progress ProgressFunc
	logger   *slog.Logger
}

func New(proxy ProxyClient, objects ObjectWriter, policy config.PollConfig, progress ProgressFunc, logger *slog.Logger) *Uploader {
	if progress == nil {
		progress = func(State, string) {}
	}
	return &Uploader{
		proxy:    proxy,
		objects:  objects,
		policy:   policy,
		progress: progress,
		logger:   logger,
	}
}

// Run executes one pipeline run for the upload.
func (u *Uploader) Run(ctx context.Context, upload Upload) (*Result, error) {
	if !captioning.IsSupportedContentType(upload.ContentType) {
		kind := upload.ContentType
		if kind == "" {
			kind = "unknown"
		}
		return nil, errors.NewBadRequestError("Unsupported file type: " + kind)
	}

	// Step 1: presign.
	u.progress(StatePresigning, "Step 1/4: Generating presigned URL...")
	step1, err := u.proxy.Do(ctx, "presign", map[string]interface{}{
		"contentType": upload.ContentType,
	})
	if err != nil {
		return nil, err
	}
	if !step1.OK() {
		return nil, stepError(step1, "Step 1 failed")
	}
	target := presignedTarget(step1.Payload)
	if target.PresignedURL == "" || target.CDNURL == "" {
		return nil, errors.NewUpstreamFailedError("Step 1 failed: missing presignedUrl/cdnUrl")
	}

	// Step 2: raw byte PUT to the presigned URL.
	u.progress(StateUploadingBytes, "Step 2/4: Uploading image bytes...")
	if err := u.objects.Put(ctx, target.PresignedURL, upload.ContentType, upload.Data); err != nil {
		return nil, err
	}

	// Step 3: register the object by its public URL.
	u.progress(StateRegistering, "Step 3/4: Registering uploaded image...")
	step3, err := u.proxy.Do(ctx, "register", map[string]interface{}{
		"imageUrl": target.CDNURL,
	})
	if err != nil {
		return nil, err
	}
	if !step3.OK() {
		return nil, stepError(step3, "Step 3 failed")
	}
	imageID := stringField(step3.Payload, "imageId")
	if imageID == "" {
		return nil, errors.NewUpstreamFailedError("Step 3 failed: missing imageId")
	}

	// Step 4: trigger generation, then poll while processing-like.
	u.progress(StateGenerating, "Step 4/4: Triggering caption generation...")
	step4, err := u.proxy.Do(ctx, "generate", map[string]interface{}{
		"imageId": imageID,
	})
	if err != nil {
		return nil, err
	}

	var captions []interface{}
	if step4.OK() {
		captions = captioning.ExtractCaptions(step4.Payload)
	}
	step4Processing := u.processingLike(step4)
	if !step4.OK() && !step4Processing {
		return nil, errors.NewUpstreamFailedError(errorMessage(step4.Payload, "Step 4 failed")).
			WithStatus(step4.Status)
	}

	if len(captions) == 0 && step4Processing {
		captions, err = u.pollForCaptions(ctx, imageID)
		if err != nil {
			return nil, err
		}
	}

	if len(captions) == 0 {
		return nil, errors.NewUpstreamProcessingError(ExhaustedMessage)
	}

	u.progress(StateDone, "Done: captions generated.")
	u.logger.Info("Pipeline run completed",
		"image_id", imageID,
		"captions", len(captions),
	)

	return &Result{
		ImageID:     imageID,
		CDNURL:      target.CDNURL,
		Captions:    captions,
		RawGenerate: step4.Payload,
	}, nil
}

// pollForCaptions runs the bounded poll loop: up to MaxAttempts polls,
// each preceded by a fixed delay. It returns captions from the first
// attempt that has any, fails fast on a non-processing error, and returns
// nil captions if every attempt exhausts.
func (u *Uploader) pollForCaptions(ctx context.Context, imageID string) ([]interface{}, error) {
	for attempt := 1; attempt <= u.policy.MaxAttempts; attempt++ {
		u.progress(StatePolling, fmt.Sprintf("Step 4/4: Waiting for captions... (attempt %d/%d)", attempt, u.policy.MaxAttempts))

		if err := sleep(ctx, u.policy.Interval); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "pipeline run canceled")
		}

		poll, err := u.proxy.Do(ctx, "poll", map[string]interface{}{
			"imageId": imageID,
		})
		if err != nil {
			return nil, err
		}

		var captions []interface{}
		if poll.OK() {
			captions = captioning.ExtractCaptions(poll.Payload)
		}
		if len(captions) > 0 {
			return captions, nil
		}

		if !u.processingLike(poll) {
			return nil, errors.NewUpstreamFailedError(errorMessage(poll.Payload, "Step 4 polling failed")).
				WithStatus(poll.Status)
		}
	}
	return nil, nil
}

func (u *Uploader) processingLike(resp *ProxyResponse) bool {
	return captioning.IsProcessingLikeWithPhrases(resp.Status, resp.Payload, resp.Raw, extraProcessingPhrases)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func stepError(resp *ProxyResponse, fallback string) error {
	return errors.NewUpstreamFailedError(errorMessage(resp.Payload, fallback)).
		WithStatus(resp.Status)
}

// errorMessage mirrors the upload client's extraction order: string body,
// then error field, then message field.
func errorMessage(payload interface{}, fallback string) string {
	if s, ok := payload.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	if obj, ok := payload.(map[string]interface{}); ok {
		if s, ok := obj["error"].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
		if s, ok := obj["message"].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return fallback
}

func presignedTarget(payload interface{}) captioning.PresignedTarget {
	return captioning.PresignedTarget{
		PresignedURL: stringField(payload, "presignedUrl"),
		CDNURL:       stringField(payload, "cdnUrl"),
	}
}

func stringField(payload interface{}, key string) string {
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return ""
	}
	s, _ := obj[key].(string)
	return s
}
