package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/covernest/ratedesk/internal/api"
	"github.com/covernest/ratedesk/internal/config"
	"github.com/covernest/ratedesk/internal/lookup"
	"github.com/covernest/ratedesk/internal/rank"
	"github.com/covernest/ratedesk/internal/rto"
	"github.com/covernest/ratedesk/internal/snapshot"
	"github.com/covernest/ratedesk/internal/store"
	"github.com/covernest/ratedesk/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	if cfg.AppEnv == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx := context.Background()

	st, err := store.NewStore(ctx, cfg.StoreType, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init")
	}
	defer func() { _ = st.Close() }()

	master, err := rto.LoadMaster(cfg.RTOMasterPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.RTOMasterPath).Msg("rto master load")
	}

	telemetry.Init()

	// Initial snapshot from the last published batch, if any.
	if batch, err := st.CurrentBatch(ctx); err != nil {
		log.Fatal().Err(err).Msg("current batch")
	} else if batch != nil {
		rows, err := st.GetRecords(ctx, batch.ID)
		if err != nil {
			log.Fatal().Err(err).Str("batch", batch.ID).Msg("load batch rows")
		}
		snap := snapshot.Build(batch.ID, rows)
		snapshot.Update(snap)
		telemetry.SnapshotRecords.Set(float64(len(snap.Records)))
		log.Info().
			Str("batch", batch.ID).
			Str("etag", snap.ETag).
			Int("records", len(snap.Records)).
			Int("skipped", snap.Skipped).
			Msg("snapshot loaded")
	} else {
		log.Info().Msg("no published batch yet, starting with an empty snapshot")
	}

	svc := lookup.New(st, master, rank.New(cfg.RankTopN, cfg.PanIndiaInsurers))
	srvAPI := api.NewServer(svc, st, cfg.AdminAPIKey, cfg.RateLimitPerIP, cfg.RateLimitAdmin)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 0, // SSE watch streams stay open
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("api listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("api server")
		}
	}()

	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShut)
	_ = metricsSrv.Shutdown(ctxShut)
	log.Info().Msg("stopped")
}
