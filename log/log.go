package log

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/motemen/go-loghttp"
)

// Logger is the global logger instance
var Logger *slog.Logger

// level is shared by Logger's handler so it can change after init
var level = new(slog.LevelVar)

// InitLogger initializes the global logger
// It sets the log level to Debug if OGRELAY_DEBUG is set
func InitLogger() {
	opts := &slog.HandlerOptions{
		AddSource: false,
		Level:     level,
	}

	level.Set(slog.LevelInfo)
	if os.Getenv("OGRELAY_DEBUG") != "" {
		level.Set(slog.LevelDebug)
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	loghttp.DefaultTransport.LogRequest = func(req *http.Request) {
		Debug("relay request",
			"method", req.Method,
			"url", req.URL.String(),
			"accept", req.Header.Get("Accept"),
		)
	}

	loghttp.DefaultTransport.LogResponse = func(resp *http.Response) {
		Debug("relay response",
			"method", resp.Request.Method,
			"url", resp.Request.URL.String(),
			"status", resp.Status,
			"status_code", resp.StatusCode,
			"content_type", resp.Header.Get("Content-Type"),
		)
	}
}

// init initializes the logger when the package is imported
func init() {
	InitLogger()
}

// SetLevel changes the minimum level of the global logger. It is safe to call
// while other goroutines are logging.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// HTTPClient returns a client whose transport logs every request and response.
func HTTPClient() *http.Client {
	return &http.Client{Transport: loghttp.DefaultTransport}
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}
