package he

import "go.uber.org/zap"

// Option configures the context factories.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger used by the factories. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
