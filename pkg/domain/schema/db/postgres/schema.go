package postgres

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	kpool "github.com/hubcluster/hubcluster/pkg/conn/db/postgres/pool"
)

type pgSchema struct {
	pool             kpool.Pool
	schemaRepository string
}

// New creates a new Schema backed by a schema repository directory.
//
// The repository holds one subdirectory per schema version, named by the
// version number, each containing the .sql files of that version.
func New(pool kpool.Pool, schemaRepository string) *pgSchema {
	return &pgSchema{
		pool:             pool,
		schemaRepository: schemaRepository,
	}
}

type schemaVersion struct {
	number int
	dir    string
}

// apply sends each .sql file under the version directory, in lexical order.
func (v schemaVersion) apply(ctx context.Context, conn kpool.Queryer) error {
	return filepath.WalkDir(v.dir, func(path string, d os.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir(), !strings.HasSuffix(path, ".sql"):
			return nil
		}

		ddl, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = conn.Exec(ctx, string(ddl))
		return err
	})
}

func isUndefinedTable(err error) bool {
	pgerr := new(pgconn.PgError)
	return errors.As(err, &pgerr) && pgerr.Code == pgerrcode.UndefinedTable
}

func (s *pgSchema) Version(ctx context.Context) (int, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return -1, err
	}
	defer conn.Release()

	var current int
	err = conn.QueryRow(
		ctx, `SELECT max("version") FROM "schema_version"`,
	).Scan(&current)
	switch {
	case err == nil:
		return current, nil
	case isUndefinedTable(err):
		// before the first upgrade even the version table is missing
		return 0, nil
	default:
		return -1, err
	}
}

func (s *pgSchema) Upgrade(ctx context.Context) error {
	versions, err := s.versions()
	if err != nil {
		return err
	}
	current, err := s.Version(ctx)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, v := range versions {
		if v.number <= current {
			continue
		}
		if err := v.apply(ctx, tx); err != nil {
			return err
		}
		if err := recordVersion(ctx, tx, v.number); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// recordVersion replaces the single row of "schema_version".
func recordVersion(ctx context.Context, tx kpool.Tx, number int) error {
	if _, err := tx.Exec(ctx, `DELETE FROM "schema_version"`); err != nil {
		return err
	}
	_, err := tx.Exec(
		ctx, `INSERT INTO "schema_version" ("version") VALUES ($1)`, number,
	)
	return err
}

// Context derives a context which is cancelled when the schema
// repository holds a version newer than the database. The repository
// is watched, so a version appearing later cancels it too.
//
// The cause of the cancellation tells which side is ahead.
func (s *pgSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	cctx, cancel := context.WithCancelCause(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		cancel(err)
		return cctx, func() {}
	}
	if err := watcher.Add(s.schemaRepository); err != nil {
		cancel(err)
		return cctx, func() {}
	}

	recheck := func() {
		if err := s.assertUpToDate(ctx); err != nil {
			cancel(err)
		}
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-cctx.Done():
				return
			case ev := <-watcher.Events:
				// only version directories appearing or going away matter
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
					continue
				}
				if filepath.Dir(ev.Name) != s.schemaRepository {
					continue
				}
				recheck()
			}
		}
	}()

	recheck()
	return cctx, func() { cancel(nil) }
}

func (s *pgSchema) assertUpToDate(ctx context.Context) error {
	versions, err := s.versions()
	if err != nil {
		return fmt.Errorf("failed to read schema repository: %w", err)
	}
	current, err := s.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, v := range versions {
		if current < v.number {
			return fmt.Errorf(
				"schema is outdated: %d (in db) < %d (in repository)",
				current, v.number,
			)
		}
	}
	return nil
}

// versions lists the version directories of the schema repository,
// sorted by version number. Entries not named by a number are ignored.
func (s *pgSchema) versions() ([]schemaVersion, error) {
	entries, err := os.ReadDir(s.schemaRepository)
	if err != nil {
		return nil, err
	}

	found := []schemaVersion{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		found = append(found, schemaVersion{
			number: n,
			dir:    filepath.Join(s.schemaRepository, e.Name()),
		})
	}

	slices.SortFunc(found, func(a, b schemaVersion) int {
		return cmp.Compare(a.number, b.number)
	})
	return found, nil
}

// Null is the Schema for deployments without a schema repository.
// Its Context never cancels and Upgrade refuses.
func Null() *nullSchema {
	return &nullSchema{}
}

type nullSchema struct{}

func (nullSchema) Upgrade(ctx context.Context) error {
	return errors.New("no schema repository is configured")
}

func (nullSchema) Version(ctx context.Context) (int, error) {
	return -1, nil
}

func (nullSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	return ctx, func() {}
}
