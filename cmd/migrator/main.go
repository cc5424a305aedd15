package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"
)

const (
	storageDSNFlag    = "storage-dsn"
	migrationPathFlag = "migrations-path"
	downFlag          = "down"

	storageDSNEnvName = "FARMSTORE_SQL_DB"
)

func main() {
	dsn, migrationsPath, down := getFlagsValues()
	if dsn == "" {
		dsn = os.Getenv(storageDSNEnvName)
	}
	validateFlags(dsn, migrationsPath)
	makeMigrations(databaseURL(dsn), migrationsPath, down)
}

type MigrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func NewMigrationLogger() *MigrationLogger {
	return &MigrationLogger{
		logger:  slog.Default().With("component", "migrator"),
		verbose: true,
	}
}

func (ml *MigrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (ml *MigrationLogger) Verbose() bool {
	return ml.verbose
}

func getFlagsValues() (dsn, migrations string, down bool) {
	storageDSN := pflag.StringP(storageDSNFlag, "s", "",
		"basket database DSN, falls back to $"+storageDSNEnvName)
	migrationsPath := pflag.StringP(migrationPathFlag, "m", "migrations",
		"directory with migration files")
	rollback := pflag.Bool(downFlag, false, "roll back every migration")
	pflag.Parse()
	return *storageDSN, *migrationsPath, *rollback
}

func validateFlags(dsn, migrationsPath string) {
	var errs []error

	if dsn == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", storageDSNFlag))
	}

	if migrationsPath == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", migrationPathFlag))
	}

	if len(errs) != 0 {
		slog.Error("too few args", "err", errors.Join(errs...))
		fallDown()
	}
}

// databaseURL points the DSN at the pgx/v5 migrate driver. Bare
// host/db DSNs are taken as is.
func databaseURL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest
		}
	}
	if strings.HasPrefix(dsn, "pgx5://") {
		return dsn
	}
	return "pgx5://" + dsn
}

func makeMigrations(dbURL, migrationsPath string, down bool) {
	m, err := migrate.New("file://"+migrationsPath, dbURL)
	if err != nil {
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
	defer func() {
		_, _ = m.Close()
	}()

	m.Log = NewMigrationLogger()

	apply, done := m.Up, "migrations applied"
	if down {
		apply, done = m.Down, "migrations rolled back"
	}

	if err := apply(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return
		}
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
	m.Log.Printf(done)
}

func fallDown() {
	os.Exit(2)
}
