package dlog

import (
	"log/slog"
	"os"

	"github.com/golang-cz/devslog"
)

type Dlog struct {
	*slog.Logger
}

func Init() Dlog {
	opts := &devslog.Options{
		HandlerOptions: &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		},
		MaxSlicePrintSize: 4,
		SortKeys:          true,
		NewLineAfterLog:   false,
	}

	logger := slog.New(devslog.NewHandler(os.Stdout, opts))
	slog.SetDefault(logger)

	return Dlog{logger}
}

func (d Dlog) Log(msg string, args ...any) {
	d.Debug(msg, args...)
}
