package cmd

import (
	"cmp"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/templui/storyloom/internal/db"
)

type dbFlags struct {
	driver     string
	connection string
}

// bind registers --driver and --dsn, defaulting to DB_DRIVER and
// DB_CONNECTION from the environment or .env.
func (f *dbFlags) bind(cmd *cobra.Command) {
	_ = godotenv.Load()

	cmd.Flags().StringVar(&f.driver, "driver", cmp.Or(os.Getenv("DB_DRIVER"), "sqlite"), "database driver (sqlite or pgx)")
	cmd.Flags().StringVar(&f.connection, "dsn", cmp.Or(os.Getenv("DB_CONNECTION"), "./data/storyloom.db?_pragma=foreign_keys(1)"), "database connection string")
}

func (f *dbFlags) open() (*sqlx.DB, error) {
	conn, err := db.Init(f.driver, f.connection)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return conn, nil
}
