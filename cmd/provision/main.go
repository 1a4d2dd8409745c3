// Command provision seeds the first super administrator account. Every other
// account is created through the API by an administrator.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/impilo/fieldreport/internal/config"
	"github.com/impilo/fieldreport/internal/db"
	"github.com/impilo/fieldreport/internal/profile"
	"github.com/impilo/fieldreport/internal/scope"
	"github.com/impilo/fieldreport/internal/watch"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("provision failed")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	var (
		name     = flag.String("name", "", "display name")
		email    = flag.String("email", "", "account email")
		password = flag.String("password", "", "initial password")
		district = flag.String("district", "", "district (optional)")
	)
	flag.Parse()

	if *name == "" || *email == "" || *password == "" {
		flag.Usage()
		return fmt.Errorf("name, email and password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	repo := profile.NewRepository(pool)
	svc := profile.NewService(repo, watch.NopPublisher{})

	// A synthetic super administrator actor bootstraps the first account.
	bootstrapActor := profile.Profile{Role: scope.RoleSuperAdministrator}

	created, err := svc.Provision(ctx, bootstrapActor, profile.ProvisionInput{
		DisplayName: *name,
		Email:       *email,
		Password:    *password,
		Role:        scope.RoleSuperAdministrator,
		District:    *district,
	})
	if err != nil {
		return err
	}

	log.Info().Str("id", created.ID.String()).Str("email", created.Email).
		Msg("super administrator provisioned")
	return nil
}
