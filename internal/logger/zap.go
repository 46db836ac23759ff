// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZap returns a zap logger that writes human-readable lines to console and
// JSON lines to each of sinks (usually a [Streamer]).
func NewZap(console io.Writer, level zapcore.Level, sinks ...io.Writer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(zapcore.AddSync(console)), level),
	}
	for _, s := range sinks {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(s), level))
	}
	return zap.New(zapcore.NewTee(cores...))
}

// FromZap adapts l into a [Logf] that logs at info level.
func FromZap(l *zap.Logger) Logf {
	return l.Sugar().Infof
}
