package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func init() {
	logger.Formatter = &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
	logger.Out = output(os.Getenv("ENV"), os.Getenv("LOG_TO_FILE") == "true")
	logger.SetLevel(level(os.Getenv("LOG_LEVEL")))
}

// output picks stdout unless file logging is requested, in which case a dated
// file under ./logs is opened. Any failure falls back to stdout.
func output(env string, toFile bool) io.Writer {
	if !toFile {
		return os.Stdout
	}
	cwd, err := os.Getwd()
	if err != nil {
		return os.Stdout
	}
	dir := filepath.Join(cwd, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warnf("Failed to create logs directory %s: %v, falling back to stdout", dir, err)
		return os.Stdout
	}
	path := filepath.Join(dir, fmt.Sprintf("%s%s.log", time.Now().Format("2006-01-02"), env))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		log.Warnf("Failed to open log file %s: %v, falling back to stdout", path, err)
		return os.Stdout
	}
	return f
}

func level(name string) log.Level {
	if name == "" {
		return log.DebugLevel
	}
	lvl, err := log.ParseLevel(strings.ToLower(name))
	if err != nil {
		return log.DebugLevel
	}
	return lvl
}

// SetOutput redirects the logger, mostly for tests.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// GetLogger returns an entry annotated with the caller's function, file and line.
func GetLogger() *log.Entry {
	pc, file, line, _ := runtime.Caller(1)
	fields := log.Fields{
		"file": file,
		"line": line,
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		fields["function"] = fn.Name()
	}
	return logger.WithFields(fields)
}
