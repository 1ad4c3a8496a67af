// Package logging sets up the session logger and keeps the debug image
// directory under its size quota.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var logFileHandler *os.File

// Flush forces buffered log output to disk.
func Flush() {
	if logFileHandler != nil {
		logFileHandler.Sync()
	}
}

// Close flushes and closes the session log file.
func Close() error {
	if logFileHandler != nil {
		logFileHandler.Sync()
		return logFileHandler.Close()
	}
	return nil
}

// NewLogger creates a logger writing to both a timestamped file under logDir
// and stdout. level is one of debug, info, warn, error; anything else means
// info.
func NewLogger(level, logDir string) (*slog.Logger, error) {
	if logDir == "" {
		logDir = "logs"
	}
	if _, err := os.Stat(logDir); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("error creating log directory: %w", err)
		}
	}

	fileName := "pricer-log-" + time.Now().Format("2006-01-02-15-04-05") + ".txt"
	lfh, err := os.Create(filepath.Join(logDir, fileName))
	if err != nil {
		return nil, err
	}
	logFileHandler = lfh

	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key != slog.TimeKey {
				return a
			}
			t := a.Value.Time()
			a.Value = slog.StringValue(t.Format(time.TimeOnly))
			return a
		},
	}
	handler := slog.NewTextHandler(io.MultiWriter(logFileHandler, os.Stdout), opts)
	return slog.New(handler), nil
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".gif":  true,
}

// EnforceImageQuota deletes the oldest debug images under logDir until their
// total size fits within limitMB. Best effort; individual failures are
// skipped.
func EnforceImageQuota(limitMB float64, logDir string) {
	limitBytes := int64(limitMB * 1024 * 1024)
	if limitBytes <= 0 {
		return
	}
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}
	type imageFile struct {
		path  string
		size  int64
		mtime time.Time
	}
	var files []imageFile
	var total int64
	for _, de := range entries {
		if de.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(de.Name()))] {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		files = append(files, imageFile{
			path:  filepath.Join(logDir, de.Name()),
			size:  info.Size(),
			mtime: info.ModTime(),
		})
		total += info.Size()
	}
	if total <= limitBytes {
		return
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mtime.Before(files[j].mtime) })
	for _, f := range files {
		if total <= limitBytes {
			break
		}
		if err := os.Remove(f.path); err == nil {
			total -= f.size
		}
	}
}
