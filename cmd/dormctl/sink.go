package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dorm-project/dorm/internal/config"
	"github.com/dorm-project/dorm/internal/sink"
)

// openSink opens the Sink implementation the loaded config selects.
func openSink(cfg *config.Config, log *zap.Logger) (sink.Sink, error) {
	switch cfg.Sink.Driver {
	case "postgres":
		return sink.NewPostgresSink(cfg.Sink.DSN, cfg.Sink.Schema, log)
	case "sqlite":
		return sink.NewSQLiteSink(cfg.Sink.DSN, log)
	default:
		return nil, fmt.Errorf("dormctl: unknown sink driver %q", cfg.Sink.Driver)
	}
}
