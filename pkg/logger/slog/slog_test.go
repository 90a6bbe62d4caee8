package slog_test

import (
	"bytes"
	rawslog "log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/sanskrit-coders/docmodel/pkg/logger"
	"github.com/sanskrit-coders/docmodel/pkg/logger/slog"
)

var _ logger.Logger = (*slog.Logger)(nil)

type logLine struct {
	Level string `json:"level"`
	Msg   string `json:"msg"`
	Tag   string `json:"tag"`
	ID    string `json:"id"`
}

func TestLogger(t *testing.T) {
	var buffer bytes.Buffer
	handler := rawslog.NewJSONHandler(&buffer, &rawslog.HandlerOptions{Level: rawslog.LevelDebug})
	l := slog.New(handler).With("id", "x1")

	methods := []struct {
		fn    func(msg string, keyvals ...any)
		level rawslog.Level
	}{
		{l.Error, rawslog.LevelError},
		{l.Warn, rawslog.LevelWarn},
		{l.Info, rawslog.LevelInfo},
		{l.Debug, rawslog.LevelDebug},
	}
	for _, m := range methods {
		t.Run(m.level.String(), func(t *testing.T) {
			buffer.Reset()
			m.fn("persisted", "tag", "Text")

			var line logLine
			require.NoError(t, json.Unmarshal(buffer.Bytes(), &line))
			require.Equal(t, logLine{Level: m.level.String(), Msg: "persisted", Tag: "Text", ID: "x1"}, line)
		})
	}
}

func TestFromLogger(t *testing.T) {
	var buffer bytes.Buffer
	l := slog.FromLogger(rawslog.New(rawslog.NewTextHandler(&buffer, nil)))

	l.Info("hello", "k", "v")

	require.Contains(t, buffer.String(), "msg=hello k=v")
	require.NotNil(t, slog.FromLogger(nil))
}
