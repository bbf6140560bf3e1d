package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"specter/internal/feed"
	"specter/internal/logging"
)

func main() {
	var (
		addr     = flag.String("addr", "127.0.0.1:3012", "Listen address.")
		in       = flag.String("in", "", "Recording to serve (.ndjson or .ndjson.zst). Empty serves the demo room.")
		write    = flag.String("write", "", "Write the recording being served to this path and continue.")
		ticks    = flag.Int("demo-ticks", 600, "Length of the demo recording.")
		interval = flag.Duration("interval", time.Second/30, "Delay between ticks.")
		loop     = flag.Bool("loop", true, "Restart the recording when it ends.")
		level    = flag.String("log-level", "info", "Log level.")
		pretty   = flag.Bool("pretty", true, "Human-readable logs.")
	)
	flag.Parse()

	log, err := logging.New(os.Stderr, *level, *pretty)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(*addr, *in, *write, *ticks, *interval, *loop, log); err != nil {
		log.Error().Err(err).Msg("feedreplay stopped")
		os.Exit(1)
	}
}

func run(addr, in, write string, ticks int, interval time.Duration, loop bool, log zerolog.Logger) error {
	rec := feed.Demo(ticks)
	if in != "" {
		var err error
		if rec, err = feed.LoadRecording(in); err != nil {
			return err
		}
	}
	if write != "" {
		if err := feed.SaveRecording(write, rec); err != nil {
			return err
		}
		log.Info().Str("path", write).Msg("recording written")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/", feed.NewReplayer(rec, interval, loop, log).Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Info().Str("addr", addr).Int("messages", len(rec.Messages)).Int("ticks", rec.Ticks()).Msg("serving feed")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
