package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/officeledger/internal/buildinfo"
	"github.com/dmitrijs2005/officeledger/internal/cli"
	"github.com/dmitrijs2005/officeledger/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, closeStore, err := cli.Bootstrap(ctx, cfg, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("failed to close store: %v", err)
		}
	}()

	app.Run(ctx)

}
