package runloopthread

import (
	"time"

	"github.com/joeycumines/logiface"
)

const (
	// DefaultName is used for threads not configured [WithName].
	DefaultName = "Unnamed RunLoopThread"

	// DefaultPriority is the initial priority, see [Thread.SetPriority].
	DefaultPriority = 0.5
)

// defaultPanicLogRates limit logging of recovered panics, per panic value.
var defaultPanicLogRates = map[time.Duration]int{
	time.Second: 10,
	time.Minute: 100,
}

// threadOptions holds configuration options for Thread creation.
type threadOptions struct {
	logger        *logiface.Logger[logiface.Event]
	panicLogRates map[time.Duration]int
	name          string
	priority      float64
	startThread   bool
}

// Option configures a Thread instance.
type Option interface {
	applyThread(*threadOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyThreadFunc func(*threadOptions) error
}

func (o *optionImpl) applyThread(opts *threadOptions) error {
	return o.applyThreadFunc(opts)
}

// WithName sets the name of the thread, used in errors and log fields.
// Defaults to [DefaultName].
func WithName(name string) Option {
	return &optionImpl{func(opts *threadOptions) error {
		opts.name = name
		return nil
	}}
}

// WithPriority sets the initial priority, see [Thread.SetPriority].
func WithPriority(priority float64) Option {
	return &optionImpl{func(opts *threadOptions) error {
		if !validPriority(priority) {
			return &UsageError{Cause: ErrInvalidPriority, Thread: opts.name}
		}
		opts.priority = priority
		return nil
	}}
}

// WithLogger configures the logger for lifecycle diagnostics and recovered
// panics. A nil logger (the default) disables logging.
//
// The same logger may be shared by any number of threads.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *threadOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithPanicLogRates configures the rate limits applied to logging of
// panics recovered from submitted work, keyed by the panic value, see
// catrate.NewLimiter. A nil or empty map disables limiting. Invalid rates
// cause New to panic.
func WithPanicLogRates(rates map[time.Duration]int) Option {
	return &optionImpl{func(opts *threadOptions) error {
		opts.panicLogRates = rates
		return nil
	}}
}

// WithStartThread sets whether New should start the thread immediately.
func WithStartThread(start bool) Option {
	return &optionImpl{func(opts *threadOptions) error {
		opts.startThread = start
		return nil
	}}
}

// resolveOptions applies Option instances to threadOptions.
func resolveOptions(opts []Option) (*threadOptions, error) {
	cfg := &threadOptions{
		name:          DefaultName,
		priority:      DefaultPriority,
		panicLogRates: defaultPanicLogRates,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyThread(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
