package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/itohio/comfort/pkg/config"
	"github.com/itohio/comfort/pkg/report"
	"github.com/itohio/comfort/pkg/store"
)

var (
	errNoPort         = errors.New("collector needs a serial port")
	errConnectionLost = errors.New("serial connection closed")
)

// runCollector reads report lines from a controller and records them until ctx is done.
func runCollector(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.Serial.Port == "" {
		return errNoPort
	}

	var st *store.Store
	if cfg.Store.Path != "" {
		var err error
		if st, err = store.Open(cfg.Store.Path); err != nil {
			return err
		}
		defer st.Close()
	}

	reader := report.NewReader(cfg.Serial.Port, cfg.Serial.BaudRate, report.WithLogger(log))
	if err := reader.Connect(); err != nil {
		return err
	}
	defer reader.Close()

	log.Info().Str("port", cfg.Serial.Port).Bool("history", st != nil).Msg("Collector started")

	for {
		select {
		case <-ctx.Done():
			lines, malformed, dropped := reader.Stats()
			log.Info().Uint64("lines", lines).Uint64("malformed", malformed).Uint64("dropped", dropped).Msg("Collector stopped")
			return nil
		case r, ok := <-reader.Readings():
			if !ok {
				return errConnectionLost
			}
			log.Info().
				Time("at", r.Timestamp).
				Float32("temperature", r.Temperature).
				Float32("mcu_temperature", r.MCUTemperature).
				Float32("humidity", r.Humidity).
				Bool("alarm", r.Alarm).
				Bool("fan", r.Fan).
				Msg("Reading")
			if st == nil {
				continue
			}
			if err := st.Append(ctx, r); err != nil {
				log.Warn().Err(err).Msg("Failed to store reading")
			}
		}
	}
}
