package testenv_test

import (
	"log/slog"
	"os"

	"github.com/sanskrit-coders/docmodel/internal/testenv"
)

func ExampleNewLogHandler() {
	logger := slog.New(testenv.NewLogHandler(os.Stdout))

	logger.Info("store opened")
	logger.Warn("type tag registered twice", slog.String("tag", "Text"))
	logger.With("type", "Text").Error("validation failed", slog.String("path", "/script_renderings"))

	// Output:
	// [0] INFO: store opened
	// [1] WARN: type tag registered twice tag=Text
	// [2] ERROR: validation failed type=Text, path=/script_renderings
}
