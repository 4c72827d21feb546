package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/hlchan/folio/service"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config:%v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	folioCfg := service.FolioConfig{
		Symbols:       cfg.Symbols,
		FinnhubAPIKey: cfg.FinnhubAPIKey,
		DataSource:    cfg.DataSource,
		StoreEndpoint: cfg.StoreEndpoint,
		StoreUser:     cfg.StoreUser,
		StorePass:     cfg.StorePass,
		Cancel:        cancel,
	}
	folio, err := service.NewFolio(ctx, &folioCfg)
	if err != nil {
		log.Printf("creating folio service: %v", err)
		return
	}

	go handleTermination(ctx, cancel)
	folio.Run(ctx)
}
