// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/logico/fleet/internal/config"
	"codeberg.org/logico/fleet/internal/database"
	"codeberg.org/logico/fleet/internal/models"
	"codeberg.org/logico/fleet/internal/repository"
	"codeberg.org/logico/fleet/internal/server"
	authsvc "codeberg.org/logico/fleet/internal/services/auth"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

// openDatabase opens the configured database without applying migrations.
func openDatabase(ctx context.Context, cmd *cli.Command) (*sqlx.DB, error) {
	cfg := config.NewFromCLI(cmd)
	server.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	db, err := database.OpenWithOptions(ctx, cfg.Database.DSN, database.Options{SkipMigrations: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func migrateCommand() *cli.Command {
	run := func(name string, fn func(context.Context, *sqlx.DB) error) *cli.Command {
		return &cli.Command{
			Name:  name,
			Usage: "Migrate the database " + name,
			Action: func(ctx context.Context, cmd *cli.Command) error {
				db, err := openDatabase(ctx, cmd)
				if err != nil {
					return err
				}
				defer db.Close()

				if err := fn(ctx, db); err != nil {
					return fmt.Errorf("migrate %s: %w", name, err)
				}
				version, err := database.SchemaVersion(ctx, db.DB)
				if err != nil {
					return err
				}
				slog.Info("migration_done", "direction", name, "version", version)
				return nil
			},
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "Run database migrations",
		Commands: []*cli.Command{
			run("up", func(ctx context.Context, db *sqlx.DB) error { return database.RunMigrations(ctx, db.DB) }),
			run("down", func(ctx context.Context, db *sqlx.DB) error { return database.MigrateDown(ctx, db.DB) }),
			run("reset", func(ctx context.Context, db *sqlx.DB) error { return database.MigrateReset(ctx, db.DB) }),
		},
	}
}

func seedUserCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed-user",
		Usage: "Create an account with a role unless the username exists",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true, Usage: "Login name"},
			&cli.StringFlag{Name: "email", Required: true, Usage: "Email address used for password recovery"},
			&cli.StringFlag{
				Name:     "password",
				Required: true,
				Usage:    "Initial password",
				Sources:  cli.EnvVars("SEED_PASSWORD"),
			},
			&cli.StringFlag{Name: "role", Value: string(models.RoleAdmin), Usage: "admin or recepcionista"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			role := models.Role(cmd.String("role"))
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}

			db, err := openDatabase(ctx, cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.RunMigrations(ctx, db.DB); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}

			svc := authsvc.NewService(repository.New(db))
			created, err := svc.EnsureUser(ctx, authsvc.SeedUser{
				Username: cmd.String("username"),
				Email:    cmd.String("email"),
				Password: cmd.String("password"),
				Role:     role,
			})
			if err != nil {
				return err
			}
			slog.Info("seed_user", "username", cmd.String("username"), "role", role, "created", created)
			return nil
		},
	}
}
