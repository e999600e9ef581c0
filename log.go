package fatfs

import (
	"context"
	"log/slog"
)

// levelTrace sits below slog's own Debug level, for per-sector read
// tracing that is too noisy to want even in a debug build by default.
const levelTrace = slog.LevelDebug - 4

func (d *Driver) trace(msg string, args ...any)    { d.log(levelTrace, msg, args...) }
func (d *Driver) debug(msg string, args ...any)    { d.log(slog.LevelDebug, msg, args...) }
func (d *Driver) info(msg string, args ...any)     { d.log(slog.LevelInfo, msg, args...) }
func (d *Driver) warn(msg string, args ...any)     { d.log(slog.LevelWarn, msg, args...) }
func (d *Driver) logerror(msg string, args ...any) { d.log(slog.LevelError, msg, args...) }

func (d *Driver) log(level slog.Level, msg string, args ...any) {
	logger := d.opts.Logger
	if logger == nil || !logger.Enabled(context.Background(), level) {
		return
	}
	logger.Log(context.Background(), level, msg, args...)
}
