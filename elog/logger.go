// Package elog provides the module's structured logger: a package-level
// *zap.SugaredLogger usable before Initialize is ever called (it starts
// as a no-op), mirroring the teacher's logger package.
package elog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the shared sugared logger. Safe to call before Initialize;
// every call is simply discarded until then.
var Logger = zap.NewNop().Sugar()

// Initialize replaces Logger with a real one. jsonOutput selects a
// production JSON encoder; otherwise a compact console encoder is used,
// suited to an interactive terminal editor's log pane.
func Initialize(jsonOutput bool) error {
	var cfg zap.Config
	if jsonOutput {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.TimeKey = "" // the status line already shows time
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Logger = l.Sugar()
	return nil
}

// Cleanup flushes any buffered log entries. Call before process exit.
func Cleanup() {
	_ = Logger.Sync()
}

func Infow(msg string, kv ...interface{})  { Logger.Infow(msg, kv...) }
func Warnw(msg string, kv ...interface{})  { Logger.Warnw(msg, kv...) }
func Errorw(msg string, kv ...interface{}) { Logger.Errorw(msg, kv...) }
func Debugw(msg string, kv ...interface{}) { Logger.Debugw(msg, kv...) }

func Info(args ...interface{})  { Logger.Info(args...) }
func Warn(args ...interface{})  { Logger.Warn(args...) }
func Error(args ...interface{}) { Logger.Error(args...) }
func Debug(args ...interface{}) { Logger.Debug(args...) }
