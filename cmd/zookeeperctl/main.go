// zookeeperctl es el CLI de operación de zoo-keeper.
//
// Uso:
//
//	zookeeperctl migrate --dsn postgres://...
//	zookeeperctl backfill run
//	zookeeperctl backfill rollback
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	dsn       string
	logLevel  string
	logFormat string
	outputFmt string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "zookeeperctl",
		Short: "Operate the zoo-keeper database",
		Long: `zookeeperctl aplica el schema y corre el backfill de recintos heredados.

Lee la conexión de --dsn o de DB_DSN.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("DB_DSN"), "Postgres DSN (default $DB_DSN)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "info"), "debug|info|warn|error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", envOr("LOG_FORMAT", "text"), "text|json")
	root.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json")

	root.AddCommand(migrateCmd())
	root.AddCommand(backfillCmd())
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
