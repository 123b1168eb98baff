package main

import (
	"errors"
	"flag"
	"fmt"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var dbUrl, migrationsPath, migrationsTable string
	var down bool
	var steps int

	flag.StringVar(&dbUrl, "db-url", "test:12345@localhost:5433/test_db", "db url connection")
	flag.StringVar(&migrationsPath, "migrations-path", "./migrations", "path to migrations")
	flag.StringVar(&migrationsTable, "migrations-table", "migrations", "name of migrations table")
	flag.BoolVar(&down, "down", false, "roll back all migrations")
	flag.IntVar(&steps, "steps", 0, "apply n migrations (negative rolls back n); overrides -down")
	flag.Parse()

	if dbUrl == "" {
		panic("storage path is required")
	}
	if migrationsPath == "" {
		panic("migrations path is required")
	}
	m, err := migrate.New(
		"file://"+migrationsPath,
		fmt.Sprintf("postgresql://%s?x-migrations-table=%s&sslmode=disable", dbUrl, migrationsTable),
	)
	if err != nil {
		panic(err)
	}

	apply, done := m.Up, "migrations applied successfully"
	switch {
	case steps != 0:
		apply, done = func() error { return m.Steps(steps) }, fmt.Sprintf("migrated %d steps", steps)
	case down:
		apply, done = m.Down, "migrations rolled back successfully"
	}

	if err := apply(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("no migrations to apply")
			return
		}
		panic(err)
	}

	fmt.Println(done)
}
