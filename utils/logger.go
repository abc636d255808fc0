package utils

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/amirphl/tariff-sheets-sync/config"
)

// NewLogger builds the process logger. Depending on cfg.Output it writes to
// stdout, to a size-rotated file, or to both. The returned closer releases the
// file handle and is safe to call when no file is open.
func NewLogger(cfg config.LoggingConfig) (*log.Logger, io.Closer, error) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if cfg.Output == "stdout" || cfg.Output == "both" {
		writers = append(writers, os.Stdout)
	}
	if cfg.Output == "file" || cfg.Output == "both" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		writers = append(writers, rotator)
		closer = rotator
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	return log.New(io.MultiWriter(writers...), "", log.LstdFlags|log.LUTC), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
