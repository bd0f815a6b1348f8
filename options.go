package asmref

import (
	"log/slog"

	"github.com/hupe1980/asmref/resource"
)

// DefaultMaxImageSize bounds the decompressed size of an image.
const DefaultMaxImageSize = 512 << 20

type options struct {
	project            bool
	metricsCollector   MetricsCollector
	logger             *Logger
	resourceController *resource.Controller
	maxImageSize       int64
	parallelism        int
}

// Option configures Reader and Session construction.
type Option func(*options)

// WithoutProjections disables the Windows Runtime projection.
//
// Windows Runtime metadata is then read as plain ECMA-335 metadata: no
// anchor row is chosen, no virtual references are enumerated and every
// AssemblyRef row reports its authored attributes.
func WithoutProjections() Option {
	return func(o *options) {
		o.project = false
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &asmref.BasicMetricsCollector{}
//	r, _ := asmref.OpenFile("Windows.winmd", asmref.WithMetricsCollector(metrics))
//	// ... use r ...
//	stats := metrics.GetStats()
//	fmt.Printf("Virtual: %d, Physical: %d\n", stats.VirtualResolves, stats.PhysicalResolves)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := asmref.NewJSONLogger(slog.LevelInfo)
//	r, _ := asmref.OpenFile("Windows.winmd", asmref.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController bounds memory, parallelism and remote bandwidth
// used while loading images.
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   1 << 30,
//	    MaxConcurrentOpens: 4,
//	})
//	readers, _ := asmref.OpenAll(ctx, store, names, asmref.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resourceController = rc
	}
}

// WithMaxImageSize limits the decompressed size of an image.
// Values <= 0 select DefaultMaxImageSize.
func WithMaxImageSize(n int64) Option {
	return func(o *options) {
		o.maxImageSize = n
	}
}

// WithParallelism sets how many images OpenAll loads at once.
// Values <= 0 load all images concurrently, subject to the resource
// controller.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		project:          true,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		maxImageSize:     DefaultMaxImageSize,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.maxImageSize <= 0 {
		o.maxImageSize = DefaultMaxImageSize
	}
	return o
}
