// Package modelhost owns the one paraphrasing model the service runs.
//
// The weights live in a generation runtime process that tokenizes, runs beam
// search and decodes. A RuntimeHost is created once by Load, is immutable
// afterwards and is safe for concurrent use; wrap it in Bounded to limit how
// many generations reach the device at the same time.
package modelhost

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samcharles93/paraphrase/internal/device"
	"github.com/samcharles93/paraphrase/internal/logger"
)

//go:generate mockgen -source=host.go -destination=mocks/generator.go -package=mocks

// Generator is the capability the request handler depends on.
type Generator interface {
	// Generate returns opts.NumReturnSequences paraphrases of text, best
	// first. Duplicates are kept.
	Generate(ctx context.Context, text string, opts Options) ([]string, error)
	// Device is the compute device generation runs on ("cuda" or "cpu").
	Device() string
	// Model is the pretrained model identifier.
	Model() string
}

const (
	DefaultModel        = "cointegrated/rut5-base-paraphraser"
	DefaultRuntimeURL   = "http://127.0.0.1:8081"
	DefaultMaxLength    = 256
	DefaultLoadAttempts = 3
	DefaultLoadBackoff  = 5 * time.Second
)

type Config struct {
	RuntimeURL string
	Model      string
	// Device is the preference: auto, cpu or cuda.
	Device string
	// Prefix is prepended to every input, for models trained with a task
	// prefix such as "paraphrase: ".
	Prefix    string
	MaxLength int

	LoadAttempts int
	LoadBackoff  time.Duration
	// RequestTimeout bounds a single generate call. Zero means no limit.
	RequestTimeout time.Duration

	HTTPClient *http.Client
	Logger     logger.Logger
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Model) == "" {
		c.Model = DefaultModel
	}
	if strings.TrimSpace(c.RuntimeURL) == "" {
		c.RuntimeURL = DefaultRuntimeURL
	}
	if c.MaxLength <= 0 {
		c.MaxLength = DefaultMaxLength
	}
	if c.LoadAttempts <= 0 {
		c.LoadAttempts = DefaultLoadAttempts
	}
	if c.LoadBackoff <= 0 {
		c.LoadBackoff = DefaultLoadBackoff
	}
	return c
}

// RuntimeHost is a loaded model served by a generation runtime.
type RuntimeHost struct {
	client    *runtimeClient
	model     string
	device    string
	prefix    string
	maxLength int
	timeout   time.Duration
	log       logger.Logger
}

var _ Generator = (*RuntimeHost)(nil)

// errNotReady is returned by a probe when the runtime answers but is still
// loading weights.
var errNotReady = errors.New("runtime has not finished loading the model")

// Load waits for the generation runtime to serve cfg.Model and settles the
// device. It retries up to cfg.LoadAttempts times with doubling backoff.
// Every failure is a *StartupError.
func Load(ctx context.Context, cfg Config) (*RuntimeHost, error) {
	cfg = cfg.withDefaults()
	log := cfg.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}
	log = log.With("component", "modelhost", "model", cfg.Model)

	fail := func(attempts int, err error) (*RuntimeHost, error) {
		return nil, &StartupError{Model: cfg.Model, Attempts: attempts, Err: err}
	}

	preferred, err := device.Normalize(cfg.Device)
	if err != nil {
		return fail(0, err)
	}
	client, err := newRuntimeClient(cfg.RuntimeURL, cfg.HTTPClient)
	if err != nil {
		return fail(0, err)
	}

	var info runtimeInfo
	delay := cfg.LoadBackoff
	attempt := 0
	for {
		attempt++
		log.Info("loading model", "attempt", attempt, "max_attempts", cfg.LoadAttempts, "runtime", cfg.RuntimeURL, "device", preferred)
		info, err = probe(ctx, client)
		if err == nil {
			break
		}
		if attempt >= cfg.LoadAttempts {
			log.Error("failed to load model", "attempts", attempt, "error", err)
			return fail(attempt, err)
		}
		log.Warn("model not ready", "attempt", attempt, "retry_in", delay, "error", err)
		select {
		case <-ctx.Done():
			return fail(attempt, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	if info.ModelID != "" && info.ModelID != cfg.Model {
		return fail(attempt, fmt.Errorf("runtime serves %q", info.ModelID))
	}
	dev, err := device.Select(preferred, info.Device)
	if err != nil {
		return fail(attempt, err)
	}

	log.Info("model loaded", "device", dev, "attempts", attempt)
	return &RuntimeHost{
		client:    client,
		model:     cfg.Model,
		device:    dev,
		prefix:    cfg.Prefix,
		maxLength: cfg.MaxLength,
		timeout:   cfg.RequestTimeout,
		log:       log,
	}, nil
}

func probe(ctx context.Context, client *runtimeClient) (runtimeInfo, error) {
	info, err := client.info(ctx)
	if err != nil {
		return info, err
	}
	if info.ModelLoaded != nil && !*info.ModelLoaded {
		return info, errNotReady
	}
	return info, nil
}

func (h *RuntimeHost) Device() string {
	return h.device
}

func (h *RuntimeHost) Model() string {
	return h.model
}

func (h *RuntimeHost) Generate(ctx context.Context, text string, opts Options) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, newInvalidOptions("text must not be empty")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	outs, err := h.client.generate(ctx, generateRequest{
		Inputs: h.prefix + text,
		Parameters: generateParameters{
			NumBeams:           opts.NumBeams,
			NumReturnSequences: opts.NumReturnSequences,
			Temperature:        opts.Temperature,
			DoSample:           true,
			MaxLength:          h.maxLength,
			Truncation:         true,
		},
	})
	if err != nil {
		return nil, wrapGeneration(err)
	}
	if len(outs) != opts.NumReturnSequences {
		return nil, &GenerationError{
			Err: fmt.Errorf("runtime returned %d sequences, want %d", len(outs), opts.NumReturnSequences),
		}
	}

	paraphrases := make([]string, 0, len(outs))
	for _, out := range outs {
		paraphrases = append(paraphrases, StripSpecialTokens(out.GeneratedText))
	}

	h.log.Debug("generated paraphrases",
		"beams", opts.NumBeams,
		"sequences", len(paraphrases),
		"temperature", opts.Temperature,
		"duration", time.Since(start),
	)
	return paraphrases, nil
}

// Close releases idle connections to the runtime.
func (h *RuntimeHost) Close() error {
	h.client.http.CloseIdleConnections()
	return nil
}

func wrapGeneration(err error) error {
	gerr := &GenerationError{Err: err}
	if serr, ok := asStatusError(err); ok {
		gerr.StatusCode = serr.StatusCode
		gerr.OOM = serr.outOfMemory()
	}
	return gerr
}
