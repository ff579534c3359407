package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/apexfs/firstline/pkg/utils/logging"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range cases {
		level, err := logging.ParseLevel(name)
		gt.NoError(t, err).Required()
		gt.Value(t, level).Equal(want)
	}

	_, err := logging.ParseLevel("verbose")
	gt.Error(t, err)
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)

	logger.Info("record registered", "model_id", "abc", "score", 7)

	var entry map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &entry)).Required()
	gt.Value(t, entry["msg"]).Equal("record registered")
	gt.Value(t, entry["model_id"]).Equal("abc")
}

func TestJSONLoggerMasksSecretTags(t *testing.T) {
	type narrative struct {
		Owner string `masq:"secret"`
		Score int
	}

	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)
	logger.Info("update", "narrative", narrative{Owner: "sensitive free text", Score: 7})

	gt.Bool(t, strings.Contains(buf.String(), "sensitive free text")).False()
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelWarn, logging.FormatJSON)

	logger.Info("dropped")
	gt.Value(t, buf.Len()).Equal(0)

	logger.Warn("kept")
	gt.Bool(t, buf.Len() > 0).True()
}

func TestContextLogger(t *testing.T) {
	ctx := context.Background()
	gt.Value(t, logging.From(ctx)).Equal(logging.Default())

	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)
	ctx = logging.With(ctx, logger)
	gt.Value(t, logging.From(ctx)).Equal(logger)
}
