package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Skryldev/jobly/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

func init() {
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return withMigrator(func(m *migrations.Migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					slog.Info("migrations: up completed")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down [N]",
			Short: "Roll back N migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("down: invalid steps argument %q", args[0])
					}
					steps = n
				}
				return withMigrator(func(m *migrations.Migrator) error {
					if err := m.Down(steps); err != nil {
						return err
					}
					slog.Info("migrations: down completed", "steps", steps)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(func(m *migrations.Migrator) error {
					v, dirty, err := m.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version: %d  dirty: %v\n", v, dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force V",
			Short: "Set the migration version without running it (clears a dirty state)",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("force: invalid version %q", args[0])
				}
				return withMigrator(func(m *migrations.Migrator) error {
					if err := m.Force(v); err != nil {
						return err
					}
					slog.Info("migrations: forced", "version", v)
					return nil
				})
			},
		},
	)
}

func withMigrator(fn func(*migrations.Migrator) error) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dsn, err := cfg.DB.DSN()
	if err != nil {
		return err
	}
	m, err := migrations.New(cfg.DB.Driver, dsn)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(m)
}

func migrateUp(driver, dsn string) error {
	m, err := migrations.New(driver, dsn)
	if err != nil {
		return err
	}
	upErr := m.Up()
	if cerr := m.Close(); upErr == nil {
		upErr = cerr
	}
	return upErr
}
