// Command migrate applies or rolls back the database schema.
//
//	migrate up         apply all pending migrations
//	migrate down [n]   roll back n migrations, or all when n is omitted
//	migrate version    print the applied version
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/amirphl/tariff-sheets-sync/config"
	"github.com/amirphl/tariff-sheets-sync/migrations"
)

func main() {
	logger := log.New(os.Stdout, "migrate: ", log.LstdFlags|log.LUTC)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}
	url := cfg.Database.URL()

	switch os.Args[1] {
	case "up":
		if err := migrations.Up(url, logger); err != nil {
			logger.Fatalf("up failed: %v", err)
		}
	case "down":
		steps := 0
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps < 0 {
				logger.Fatalf("invalid step count %q", os.Args[2])
			}
		}
		if err := migrations.Down(url, steps, logger); err != nil {
			logger.Fatalf("down failed: %v", err)
		}
	case "version":
		version, dirty, err := migrations.Version(url)
		if err != nil {
			logger.Fatalf("version failed: %v", err)
		}
		fmt.Printf("%d", version)
		if dirty {
			fmt.Print(" (dirty)")
		}
		fmt.Println()
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate up | down [n] | version")
}
