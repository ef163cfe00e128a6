package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/itohio/comfort/pkg/config"
	"github.com/itohio/comfort/pkg/diag"
	"github.com/itohio/comfort/pkg/hw/hwmock"
	"github.com/itohio/comfort/pkg/module"
	"github.com/itohio/comfort/pkg/report"
	"github.com/itohio/comfort/pkg/scheduler"
	"github.com/itohio/comfort/pkg/store"
	"github.com/itohio/comfort/pkg/task"
	"github.com/itohio/comfort/pkg/telemetry"
	"github.com/itohio/comfort/pkg/timer"
)

// runController runs the climate controller on simulated hardware until ctx is done.
func runController(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	fan := hwmock.NewPin(false)
	led := hwmock.NewPin(false)
	sound := hwmock.NewSoundPin(cfg.Mock.SoundEvery)
	climate := hwmock.NewClimate(&cfg.Mock, fan)
	mcu := hwmock.NewThermometer(climate, cfg.Mock.MCUOffset)

	sinks, closeSinks, err := openSinks(cfg, log)
	if err != nil {
		return err
	}
	defer closeSinks()

	alarm := module.NewSoundAlarm(sound)
	thermostat := module.NewThermostat(module.ThermostatSettings{
		ReportEvery: cfg.Thermostat.ReportEvery,
		FanOnAbove:  float32(cfg.Thermostat.FanOnAbove),
		FanOffBelow: float32(cfg.Thermostat.FanOffBelow),
	}, climate, mcu, fan, alarm, sinks)

	registry := task.NewRegistry()
	if err := registerModules(registry, cfg, log, led, alarm, thermostat); err != nil {
		return err
	}

	load := telemetry.New()
	sched, err := scheduler.New(cfg.Scheduler.Thresholds, registry, scheduler.WithRecorder(load))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	clock := timer.NewClock(cfg.Scheduler.TickInterval, sched)

	monitor := diag.New(sched, load, log, diag.WithWarnRate(cfg.Diagnostics.WarnPerSecond))
	if err := monitor.Start(cfg.Diagnostics.Schedule); err != nil {
		return err
	}
	defer monitor.Stop()

	log.Info().
		Dur("tick", clock.Period()).
		Uint32("fast", cfg.Scheduler.Thresholds.Fast).
		Uint32("medium", cfg.Scheduler.Thresholds.Medium).
		Uint32("slow", cfg.Scheduler.Thresholds.Slow).
		Uint32("very_slow", cfg.Scheduler.Thresholds.VerySlow).
		Msg("Controller starting")

	sched.EnableSystemTasks()
	sched.TriggerPowerOnTask()

	ticks := timer.NewSource(clock).Start(ctx)
	err = sched.Run(ctx, cfg.Scheduler.IdleSleep)
	<-ticks

	reports, sensorErrors, sinkErrors := thermostat.Stats()
	log.Info().
		Uint64("ticks", clock.SystemTime()).
		Uint64("missed", sched.Snapshot().TotalMissed()).
		Uint64("reports", reports).
		Uint64("sensor_errors", sensorErrors).
		Uint64("sink_errors", sinkErrors).
		Uint64("alarms", alarm.Detections()).
		Msg("Controller stopped")

	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

func registerModules(r *task.Registry, cfg *config.Config, log zerolog.Logger, led *hwmock.Pin, alarm *module.SoundAlarm, thermostat *module.Thermostat) error {
	if err := r.Register("heartbeat", module.NewHeartbeat(led), task.Fast, task.VerySlow); err != nil {
		return err
	}
	if err := r.Register("sound-alarm", alarm, task.Medium); err != nil {
		return err
	}
	if err := r.Register("thermostat", thermostat, task.PowerOn, task.VerySlow); err != nil {
		return err
	}

	if !cfg.Watchdog.Enabled {
		return nil
	}
	interval, err := module.WatchdogInterval()
	if err != nil {
		return fmt.Errorf("failed to read watchdog settings: %w", err)
	}
	if interval == 0 {
		log.Warn().Msg("Watchdog enabled but not configured by the service manager")
	} else {
		log.Info().Dur("interval", interval).Msg("Service watchdog active")
	}
	return r.Register("watchdog", module.NewWatchdog(module.Systemd{}), task.PowerOn, task.VerySlow)
}

// openSinks builds the report sinks: the serial port (stdout when none is configured),
// the optional history store and a debug log line per report.
func openSinks(cfg *config.Config, log zerolog.Logger) (module.MultiSink, func(), error) {
	var (
		sinks   module.MultiSink
		closers []func() error
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn().Err(err).Msg("Error closing report sink")
			}
		}
	}

	if cfg.Serial.Port != "" {
		port, err := report.OpenSerial(cfg.Serial.Port, cfg.Serial.BaudRate)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, port.Close)
		sinks = append(sinks, report.NewWriter(port))
		log.Info().Str("port", cfg.Serial.Port).Int("baud", cfg.Serial.BaudRate).Msg("Reporting to serial port")
	} else {
		sinks = append(sinks, report.NewWriter(os.Stdout))
	}

	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, st.Close)
		sinks = append(sinks, st)
		log.Info().Str("path", cfg.Store.Path).Msg("Recording reading history")
	}

	sinks = append(sinks, module.SinkFunc(func(r module.Reading) error {
		log.Debug().
			Float32("temperature", r.Temperature).
			Float32("mcu_temperature", r.MCUTemperature).
			Float32("humidity", r.Humidity).
			Bool("alarm", r.Alarm).
			Bool("fan", r.Fan).
			Msg("Climate report")
		return nil
	}))

	return sinks, closeAll, nil
}
