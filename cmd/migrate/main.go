// CLI tool to run pending database migrations from db/.
// Checks the migrations table to skip already-applied files.
// Wraps each migration + record insert in a single transaction.
// Usage: go run ./cmd/migrate [-dir db] [-dry-run]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joho/godotenv"
)

var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{3}-`)

func main() {
	dir := flag.String("dir", "db", "directory holding *.sql migrations")
	dryRun := flag.Bool("dry-run", false, "list pending migrations without applying them")
	flag.Parse()

	// A missing .env is fine when DB_URL comes from the environment.
	_ = godotenv.Load()
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DB_URL is not set")
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	files, err := migrationFiles(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	applied, err := appliedMigrations(ctx, conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading migrations table: %v\n", err)
		os.Exit(1)
	}

	ran := 0
	for _, f := range pendingMigrations(files, applied) {
		filename := filepath.Base(f)
		if *dryRun {
			fmt.Printf("  pending: %s\n", filename)
			continue
		}
		if err := applyMigration(ctx, conn, f); err != nil {
			fmt.Fprintf(os.Stderr, "Error running %s: %v\n", filename, err)
			os.Exit(1)
		}
		fmt.Printf("  applied: %s\n", filename)
		ran++
	}

	switch {
	case *dryRun:
	case ran == 0:
		fmt.Println("No pending migrations.")
	default:
		fmt.Printf("\n%d migration(s) applied.\n", ran)
	}
}

// migrationFiles returns the *.sql files in dir in lexical (= date) order.
func migrationFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migration files found in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// appliedMigrations reads the migrations table. Before the first migration
// has run the table does not exist, which counts as nothing applied.
func appliedMigrations(ctx context.Context, conn *pgx.Conn) (map[string]bool, error) {
	applied := make(map[string]bool)
	rows, err := conn.Query(ctx, "SELECT migration FROM migrations")
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42P01" { // undefined_table
			return applied, nil
		}
		return nil, err
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
			return applied, nil
		}
		return nil, err
	}
	for _, name := range names {
		applied[name] = true
	}
	return applied, nil
}

// pendingMigrations filters out files whose base name is already recorded.
func pendingMigrations(files []string, applied map[string]bool) []string {
	var pending []string
	for _, f := range files {
		if !applied[filepath.Base(f)] {
			pending = append(pending, f)
		}
	}
	return pending
}

// applyMigration runs one file and records it in the same transaction.
func applyMigration(ctx context.Context, conn *pgx.Conn, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	filename := filepath.Base(path)

	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			"INSERT INTO migrations (migration, description) VALUES ($1, $2)",
			filename, descriptionFromFilename(filename))
		if err != nil {
			return fmt.Errorf("record migration: %w", err)
		}
		return nil
	})
}

// descriptionFromFilename strips the YYYY-MM-DD-NNN- prefix and .sql suffix.
func descriptionFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".sql")
	name = datePrefix.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, "-", " ")
}
