package advisor

import (
	"context"
	"log/slog"
	"sync"
)

const (
	SimpleLoggerName = "SimpleLoggerAdvisor"

	requestBanner  = "=== LLM Request ==="
	responseBanner = "=== LLM Response ==="
)

var defaultSimpleLoggerSink = sync.OnceValue(func() *slog.Logger {
	return slog.Default().With("component", SimpleLoggerName)
})

// SimpleLogger logs the request before and the response after an exchange at
// debug level. Its two flags are fixed at construction and it holds no other
// state, so one value can serve any number of concurrent exchanges.
type SimpleLogger struct {
	logRequest  bool
	logResponse bool
	logger      *slog.Logger
}

func NewSimpleLogger(logRequest, logResponse bool) SimpleLogger {
	return SimpleLogger{logRequest: logRequest, logResponse: logResponse}
}

// NewDefaultSimpleLogger logs both requests and responses.
func NewDefaultSimpleLogger() SimpleLogger {
	return NewSimpleLogger(true, true)
}

// WithLogger returns a copy writing to l instead of the process-wide sink.
func (a SimpleLogger) WithLogger(l *slog.Logger) SimpleLogger {
	a.logger = l
	return a
}

func (a SimpleLogger) LogRequestEnabled() bool  { return a.logRequest }
func (a SimpleLogger) LogResponseEnabled() bool { return a.logResponse }

func (a SimpleLogger) Name() string { return SimpleLoggerName }
func (a SimpleLogger) Order() int   { return 0 }

func (a SimpleLogger) AdviseCall(ctx context.Context, req *Request, chain CallChain) (*Response, error) {
	if a.logRequest {
		a.debug(ctx, requestBanner, "Request", "request", req)
	}
	resp, err := chain.NextCall(ctx, req)
	if err != nil {
		return resp, err
	}
	if a.logResponse {
		a.debug(ctx, responseBanner, "Response", "response", resp)
	}
	return resp, nil
}

func (a SimpleLogger) sink() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return defaultSimpleLoggerSink()
}

// debug is best-effort: a broken handler must not fail the exchange.
func (a SimpleLogger) debug(ctx context.Context, banner, msg, key string, v any) {
	defer func() { _ = recover() }()
	l := a.sink()
	if !l.Enabled(ctx, slog.LevelDebug) {
		return
	}
	l.DebugContext(ctx, banner)
	l.DebugContext(ctx, msg, key, v)
}

var _ CallAdvisor = SimpleLogger{}
