// Package contentpipe resolves dynamic placeholders embedded in user-authored
// post content. Placeholders have the form @{source.expression} where source
// is env, builtin or json; the expression is a key optionally followed by a
// pipe-separated pipeline of operations:
//
//	"New story: @{json.title | case_title} @{json.tags | each:prefix('#') | join(' ')}"
//
// A Processor owns the configuration; each ProcessContents call is an
// independent invocation that fetches the remote JSON root at most once and
// shares it (including any [RANDOM] selection) across all content strings of
// that call.
package contentpipe

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/postcraft/contentpipe/internal/jsonroot"
	"github.com/postcraft/contentpipe/internal/metrics"
	"github.com/postcraft/contentpipe/internal/pipeline"
	"github.com/postcraft/contentpipe/internal/source"
	"github.com/postcraft/contentpipe/internal/value"
)

// Config holds Processor configuration. The zero value is not usable; start
// from DefaultConfig or NewProcessor options.
type Config struct {
	// Logger receives warnings for every fail-soft degradation and debug
	// detail for resolutions. Defaults to slog.Default().
	Logger *slog.Logger

	// HTTPClient performs the JSON root fetch. Defaults to a client
	// bounded by FetchTimeout.
	HTTPClient *http.Client

	// FetchTimeout bounds the single JSON root GET per invocation.
	FetchTimeout time.Duration `validate:"min=0"`

	// ContentJSON is the JSON source configuration: "URL" or "URL | PATH"
	// where PATH may embed one [RANDOM] token. When empty, the CONTENT_JSON
	// environment variable is consulted per invocation.
	ContentJSON string

	// Timezone is the builtin clock zone, UTC or UTC±N. When empty, the
	// TIME_ZONE environment variable is consulted; unrecognized values
	// fall back to UTC with a warning.
	Timezone string

	// Getenv looks up env.* placeholders. Defaults to os.Getenv.
	Getenv func(string) string

	// Now supplies the builtin clock. Defaults to time.Now.
	Now func() time.Time

	// RandInt draws uniform indexes for [RANDOM] selection and the
	// random() operation. Defaults to math/rand/v2.
	RandInt func(n int) int

	// EnableMetrics keeps per-processor resolution counters.
	EnableMetrics bool
}

// DefaultConfig returns the configuration used when no options override it.
func DefaultConfig() *Config {
	return &Config{
		Logger:        slog.Default(),
		FetchTimeout:  10 * time.Second,
		Getenv:        os.Getenv,
		Now:           time.Now,
		RandInt:       rand.IntN,
		EnableMetrics: true,
	}
}

// Option configures a Processor instance.
type Option func(*Processor) error

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		p.config.Logger = logger
		return nil
	}
}

// WithHTTPClient sets the client used for the JSON root fetch.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Processor) error {
		p.config.HTTPClient = client
		return nil
	}
}

// WithFetchTimeout bounds the JSON root GET.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Processor) error {
		p.config.FetchTimeout = d
		return nil
	}
}

// WithContentJSON sets the JSON source configuration explicitly instead of
// reading CONTENT_JSON from the environment.
func WithContentJSON(config string) Option {
	return func(p *Processor) error {
		p.config.ContentJSON = config
		return nil
	}
}

// WithTimezone sets the builtin clock zone explicitly instead of reading
// TIME_ZONE from the environment.
func WithTimezone(tz string) Option {
	return func(p *Processor) error {
		p.config.Timezone = tz
		return nil
	}
}

// WithEnvLookup replaces the environment lookup used by env.* placeholders.
func WithEnvLookup(getenv func(string) string) Option {
	return func(p *Processor) error {
		if getenv == nil {
			return fmt.Errorf("env lookup must not be nil")
		}
		p.config.Getenv = getenv
		return nil
	}
}

// WithClock replaces the builtin clock, pinning CURR_DATE and friends in
// tests.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) error {
		if now == nil {
			return fmt.Errorf("clock must not be nil")
		}
		p.config.Now = now
		return nil
	}
}

// WithRandInt replaces the uniform index source used by [RANDOM] and
// random().
func WithRandInt(randInt func(n int) int) Option {
	return func(p *Processor) error {
		if randInt == nil {
			return fmt.Errorf("random source must not be nil")
		}
		p.config.RandInt = randInt
		return nil
	}
}

// WithMetrics toggles the resolution counters.
func WithMetrics(enabled bool) Option {
	return func(p *Processor) error {
		p.config.EnableMetrics = enabled
		return nil
	}
}

// Processor is the public entry point of the engine. It is safe for
// concurrent use: every ProcessContents call owns its invocation state, so
// two calls never share a JSON root cache.
type Processor struct {
	config    *Config
	collector *metrics.Collector
}

// NewProcessor creates a Processor from DefaultConfig plus options.
func NewProcessor(options ...Option) (*Processor, error) {
	p := &Processor{config: DefaultConfig()}
	for _, option := range options {
		if err := option(p); err != nil {
			return nil, fmt.Errorf("failed to apply processor option: %w", err)
		}
	}
	if err := validator.New().Struct(p.config); err != nil {
		return nil, fmt.Errorf("invalid processor configuration: %w", err)
	}
	if p.config.HTTPClient == nil {
		p.config.HTTPClient = &http.Client{Timeout: p.config.FetchTimeout}
	}
	if p.config.EnableMetrics {
		p.collector = metrics.NewCollector()
	}
	return p, nil
}

// Metrics returns a snapshot of the resolution counters, or the zero value
// when metrics are disabled.
func (p *Processor) Metrics() metrics.Snapshot {
	if p.collector == nil {
		return metrics.Snapshot{}
	}
	return p.collector.Snapshot()
}

// ProcessContents substitutes placeholders in every content string and
// returns the results in input order. The JSON root is fetched at most once
// for the whole call, so a [RANDOM] selection is identical across companion
// strings. Fail-soft conditions (missing variables, absent root, zero path
// matches, malformed arguments) leave the placeholder or value untouched and
// log a warning; random() and attr() precondition violations abort the whole
// call with an *OpError and no partial results.
func (p *Processor) ProcessContents(ctx context.Context, contents ...string) ([]string, error) {
	inv := p.newInvocation()

	results := make([]string, len(contents))
	for i, content := range contents {
		processed, err := inv.processContent(ctx, content)
		if err != nil {
			return nil, err
		}
		results[i] = processed
	}
	if p.collector != nil {
		p.collector.AddContentsProcessed(int64(len(contents)))
	}
	return results, nil
}

// invocation carries the per-call state: the lazily fetched JSON root and
// the resolver/executor pair bound to this call's logger.
type invocation struct {
	p        *Processor
	logger   *slog.Logger
	resolver *source.Resolver
	executor *pipeline.Executor
	loader   *jsonroot.Loader

	rootLoaded bool
	rootOK     bool
	root       value.Value

	// ctx of the in-flight call, captured so the lazy root fetch and
	// nested argument lookups observe cancellation.
	ctx context.Context
}

func (p *Processor) newInvocation() *invocation {
	cfg := p.config
	logger := cfg.Logger.With("invocation", uuid.NewString())
	inv := &invocation{
		p:        p,
		logger:   logger,
		resolver: source.NewResolver(cfg.Getenv, cfg.Now, cfg.Timezone, logger),
		loader:   jsonroot.NewLoader(cfg.HTTPClient, cfg.RandInt, logger),
	}
	inv.executor = pipeline.NewExecutor(inv.lookup, cfg.RandInt, logger)
	return inv
}

// jsonRoot returns the memoized root, fetching it on first use.
func (inv *invocation) jsonRoot() (value.Value, bool) {
	if inv.rootLoaded {
		return inv.root, inv.rootOK
	}
	inv.rootLoaded = true

	config := inv.p.config.ContentJSON
	if config == "" {
		config = inv.p.config.Getenv("CONTENT_JSON")
	}
	if config == "" {
		inv.logger.Debug("no JSON source configured")
		return inv.root, false
	}

	ctx := inv.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	inv.root, inv.rootOK = inv.loader.Load(ctx, config)
	if inv.p.collector != nil {
		inv.p.collector.IncrementRootFetch(inv.rootOK)
	}
	return inv.root, inv.rootOK
}

// lookup resolves a (source, key) pair for top-level placeholders and for
// nested operation arguments alike.
func (inv *invocation) lookup(src, key string) (value.Value, bool) {
	switch src {
	case "env":
		return inv.resolver.Env(key), true
	case "builtin":
		return inv.resolver.Builtin(key), true
	case "json":
		root, ok := inv.jsonRoot()
		if !ok {
			return value.Null(), false
		}
		return jsonroot.Eval(key, root)
	}
	return value.Null(), false
}
