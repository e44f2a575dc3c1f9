package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/osrs-kit/spritefetch/internal/cli"
)

func main() {
	// The pipeline has no cancellation seam mid-item, so an interrupt just
	// exits; already-written sprites stay on disk.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Interrupt received, shutting down...")
		os.Exit(0)
	}()

	cli.Execute()
}
