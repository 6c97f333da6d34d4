package export

import (
	"context"
	"database/sql"
	"fmt"
	"kenosha-results/lib/export/db"
	"kenosha-results/lib/results"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens (creating if needed) the sqlite database at path and applies
// the vote_records schema to it.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	database.SetMaxOpenConns(1)

	_, err = database.Exec(db.Schema)
	if err != nil {
		database.Close()
		return nil, wrapOpenDB(err)
	}
	return database, nil
}

const insertVoteRecord = `insert into vote_records(
	municipality, ward_id, ward_name, ward_number, contest, party, candidate, votes
) values (?, ?, ?, ?, ?, ?, ?, ?)`

// InsertTable writes every row of the table inside a single transaction.
func InsertTable(ctx context.Context, database *sql.DB, table results.Table) error {
	if len(table.Rows) == 0 {
		return results.ErrNothingCollected
	}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertVoteRecord)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range table.Rows {
		_, err = stmt.ExecContext(
			ctx,
			row.Municipality,
			row.WardId,
			row.WardName,
			row.WardNumber,
			row.Contest,
			row.Party,
			row.Candidate,
			row.Votes,
		)
		if err != nil {
			return fmt.Errorf("insert %s: %w", row.Key(), err)
		}
	}

	return tx.Commit()
}

// Sqlite writes a table into a fresh sqlite database file.
type Sqlite struct{}

func (Sqlite) Ext() string {
	return "db"
}

func (Sqlite) WriteFile(ctx context.Context, path string, table results.Table) error {
	if len(table.Rows) == 0 {
		return results.ErrNothingCollected
	}
	_, err := os.Stat(path)
	if err == nil {
		return fmt.Errorf("write %s: %w", path, os.ErrExist)
	}

	database, err := OpenDB(path)
	if err != nil {
		return err
	}
	err = InsertTable(ctx, database, table)
	closeErr := database.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
