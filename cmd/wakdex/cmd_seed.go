package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/HerbHall/wakdex/internal/fixtures"
)

func runSeed(args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "", "YAML seed file (default: embedded reference catalog)")
	settings, _ := loadSettings(fs, args)

	set, err := loadFixtures(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := openStore(ctx, settings.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := set.Seed(ctx, db); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	for _, c := range set.Collections() {
		fmt.Printf("Seeded %s: %d documents\n", c, len(set[c]))
	}
}

func loadFixtures(path string) (fixtures.Set, error) {
	if path == "" {
		return fixtures.Default()
	}
	return fixtures.ReadFile(path)
}
