package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HerbHall/wakdex/internal/backup"
	"github.com/HerbHall/wakdex/internal/store"
)

func runBackup(args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	output := fs.String("output", "", "output file path (default: wakdex-backup-{timestamp}.tar.gz)")
	withConfig := fs.Bool("include-config", true, "include the -config file in the archive")
	settings, _ := loadSettings(fs, args)

	if settings.Store.Driver != "sqlite" {
		fmt.Fprintf(os.Stderr, "backup supports the sqlite driver only, configured: %s\n", settings.Store.Driver)
		os.Exit(1)
	}

	now := time.Now()
	if *output == "" {
		*output = fmt.Sprintf("wakdex-backup-%s.tar.gz", now.Format("20060102-150405"))
	}
	configFile := ""
	if *withConfig {
		configFile = fs.Lookup("config").Value.String()
	}

	db, err := store.New(settings.Store.SQLite.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backup failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	m, err := backup.Backup(context.Background(), db, filepath.Base(settings.Store.SQLite.Path), configFile, *output, now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backup failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Backup created: %s (%d collections)\n", *output, len(m.Collections))
}
