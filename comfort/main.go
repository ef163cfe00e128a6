package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/comfort/pkg/config"
	"github.com/itohio/comfort/pkg/logx"
	"github.com/itohio/comfort/pkg/report"
)

const (
	modeController = "controller"
	modeCollector  = "collector"
)

func main() {
	var (
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		portFlag   = flag.String("port", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		modeFlag   = flag.String("mode", modeController, "Run mode: controller or collector")
		levelFlag  = flag.String("log-level", "", "Log level override (trace, debug, info, warn, error)")
		listFlag   = flag.Bool("list-ports", false, "List serial ports and exit")
	)
	flag.Parse()

	if *listFlag {
		ports, err := report.Ports()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		l := logx.New("error", true, os.Stderr)
		l.Fatal().Err(err).Str("path", *configFlag).Msg("Failed to load configuration")
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *levelFlag != "" {
		cfg.Logging.Level = *levelFlag
	}

	// Reports may go to stdout, so logs always go to stderr.
	log := logx.New(cfg.Logging.Level, cfg.Logging.Console, os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch *modeFlag {
	case modeController:
		err = runController(ctx, cfg, log)
	case modeCollector:
		err = runCollector(ctx, cfg, log)
	default:
		err = fmt.Errorf("unknown mode %q", *modeFlag)
	}
	if err != nil {
		log.Error().Err(err).Str("mode", *modeFlag).Msg("Stopped with error")
		cancel()
		os.Exit(1)
	}
}
