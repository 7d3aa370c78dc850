/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package log is a thin wrapper over zap's SugaredLogger, giving every
// package a named logger the way the teacher's internal logging
// conventions do: one *Logger per package, created at package init time
// with log.New("pkg-name").
package log

import (
	"go.uber.org/zap"
)

var base = mustBuild()

func mustBuild() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "" // deterministic, test-friendly output

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return l
}

// Logger is a named, leveled logger.
type Logger struct {
	s *zap.SugaredLogger
}

// New returns a Logger whose zap logger name is name, printed with every
// log entry it emits.
func New(name string) *Logger {
	return &Logger{s: base.Sugar().Named(name)}
}

// Debugf logs at debug level.
func (l *Logger) Debugf(template string, args ...interface{}) {
	l.s.Debugf(template, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(template string, args ...interface{}) {
	l.s.Infof(template, args...)
}

// Warnf logs at warn level.
func (l *Logger) Warnf(template string, args ...interface{}) {
	l.s.Warnf(template, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(template string, args ...interface{}) {
	l.s.Errorf(template, args...)
}
