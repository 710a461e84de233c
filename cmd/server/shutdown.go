package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

type httpServer interface {
	Shutdown(ctx context.Context) error
}

type dbCloser interface {
	Close(ctx context.Context) error
}

// shutdown stops the service in dependency order: no new requests, then the
// connect loop, then MongoDB, then Redis.
func shutdown(ctx context.Context, log zerolog.Logger, srv httpServer, stopConnect context.CancelFunc, runDone <-chan struct{}, db dbCloser, cache io.Closer) {
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("HTTP shutdown incomplete")
	}

	stopConnect()
	select {
	case <-runDone:
	case <-ctx.Done():
		log.Warn().Msg("connect loop did not stop in time")
	}

	if err := db.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("MongoDB disconnect failed")
	}
	if err := cache.Close(); err != nil {
		log.Warn().Err(err).Msg("Redis close failed")
	}
	log.Info().Msg("stopped")
}
