package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	pg "zoo-keeper/internal/adapters/storage/postgres"
	"zoo-keeper/internal/domain/backfill"
	"zoo-keeper/internal/domain/enclosures"
	"zoo-keeper/internal/domain/occupancy"
	"zoo-keeper/internal/platform/logger"

	"github.com/spf13/cobra"
)

var errNoDSN = errors.New("missing --dsn (or DB_DSN)")

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := pg.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func backfillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Create typed enclosures from legacy enclosure names",
		Long: `backfill agrupa los animales por su nombre de recinto heredado y crea un
recinto por nombre (dieta resuelta, capacidad max(3, n)).

Correr sin tráfico de asignaciones: el proceso no coordina con el servidor.`,
	}
	cmd.AddCommand(backfillRunCmd())
	cmd.AddCommand(backfillRollbackCmd())
	return cmd
}

func backfillRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the legacy backfill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			runner, err := newRunner(cmd.Context(), db)
			if err != nil {
				return err
			}
			res, err := runner.Run(cmd.Context())
			if perr := printResult(cmd.OutOrStdout(), res); perr != nil {
				return perr
			}
			return err
		},
	}
}

func backfillRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Delete every enclosure created by the backfill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			runner, err := newRunner(cmd.Context(), db)
			if err != nil {
				return err
			}
			n, err := runner.Rollback(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enclosures deleted: %d\n", n)
			return nil
		},
	}
}

// newRunner arma el mismo camino que usa el server para crear recintos:
// enclosures.Service sobre Postgres con el ledger hidratado.
func newRunner(ctx context.Context, db *sql.DB) (*backfill.Runner, error) {
	log := newLogger()
	animalsRepo := pg.NewAnimalsRepo(db)

	svc := enclosures.NewService(pg.NewEnclosuresRepo(db), occupancy.NewLedger(), enclosures.WithLogger(log))
	if err := svc.Hydrate(ctx, animalsRepo); err != nil {
		return nil, fmt.Errorf("hydrate ledger: %w", err)
	}
	return backfill.NewRunner(animalsRepo, svc, log), nil
}

func openDB() (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errNoDSN
	}
	return pg.Open(dsn)
}

// El log va a stderr para no mezclarse con la salida del comando.
func newLogger() logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(logLevel),
		Format: logger.ParseFormat(logFormat),
		App:    "zookeeperctl",
		Output: os.Stderr,
	})
}

func printResult(w io.Writer, res backfill.Result) error {
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(w, "enclosures created: %d\n", res.EnclosuresCreated)
	for _, name := range res.Skipped {
		fmt.Fprintf(w, "skipped (already backfilled): %s\n", name)
	}
	return nil
}
