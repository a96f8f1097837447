// Command createadmin creates an admin account or promotes an existing
// user to admin.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/smarttrans/smarttrans-backend/internal/config"
	"github.com/smarttrans/smarttrans-backend/internal/database"
	"github.com/smarttrans/smarttrans-backend/internal/logger"
	"github.com/smarttrans/smarttrans-backend/internal/services"
	"github.com/smarttrans/smarttrans-backend/pkg/utils"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "createadmin: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("createadmin", pflag.ContinueOnError)
	var (
		email    string
		password string
		name     string
	)
	flags.StringVar(&email, "email", "", "admin email (required)")
	flags.StringVar(&password, "password", "", "password; required for a new account, optional when promoting")
	flags.StringVar(&name, "name", "", "full name")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: createadmin --email EMAIL [--password PASSWORD] [--name NAME]")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}
	if email == "" {
		flags.Usage()
		return fmt.Errorf("--email is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// No outbound channels: the account is created silently.
	notifier := services.NewNotifier(db, nil, log)
	accounts := services.NewAccounts(db, utils.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.TokenTTL), notifier, log)

	user, created, err := accounts.EnsureAdmin(ctx, email, password, name)
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("created admin %s (id %d)\n", user.Email, user.ID)
	} else {
		fmt.Printf("promoted %s (id %d) to admin\n", user.Email, user.ID)
	}
	return nil
}
