package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/FocuswithJustin/GlobalPhone/core/errors"
	"github.com/FocuswithJustin/GlobalPhone/core/metadata"
	"github.com/FocuswithJustin/GlobalPhone/core/record"
)

// Schema holds one row per region record, in database order, plus free-form
// build metadata.
const Schema = `
CREATE TABLE IF NOT EXISTS regions (
	position     INTEGER PRIMARY KEY,
	country_code TEXT NOT NULL,
	body         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS regions_country_code ON regions (country_code);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// Meta keys written by SaveRecords callers.
const (
	MetaEncoding    = "encoding"
	MetaFingerprint = "blake3"
	MetaSource      = "source"
)

// SaveRecords replaces the stored region records with records. Each record
// is stored as JSON in its original shape.
func SaveRecords(ctx context.Context, db *sql.DB, records []any) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return errors.NewIO("create schema", "", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewIO("begin", "", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM regions`); err != nil {
		return errors.NewIO("clear regions", "", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO regions (position, country_code, body) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.NewIO("prepare insert", "", err)
	}
	defer stmt.Close()

	for i, data := range records {
		code, err := countryCode(data)
		if err != nil {
			return errors.Wrapf(err, "region %d", i)
		}
		body, err := json.Marshal(data)
		if err != nil {
			return errors.Wrapf(err, "region %d", i)
		}
		if _, err := stmt.ExecContext(ctx, i, code, string(body)); err != nil {
			return errors.NewIO("insert region", code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.NewIO("commit", "", err)
	}
	return nil
}

func countryCode(data any) (string, error) {
	r, err := record.New(data)
	if err != nil {
		return "", err
	}
	return record.Field(r, metadata.RegionCountryCode, "")
}

// LoadRecords returns the stored region records in their saved order.
func LoadRecords(ctx context.Context, db *sql.DB) ([]any, error) {
	rows, err := db.QueryContext(ctx, `SELECT body FROM regions ORDER BY position`)
	if err != nil {
		return nil, errors.NewIO("query regions", "", err)
	}
	defer rows.Close()

	records := []any{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, errors.NewIO("scan region", "", err)
		}
		var v any
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return nil, errors.NewDecodeIndex(len(records), "stored region is not JSON", err)
		}
		records = append(records, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("read regions", "", err)
	}
	return records, nil
}

// CountryCodes returns the stored calling codes in order.
func CountryCodes(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT country_code FROM regions ORDER BY position`)
	if err != nil {
		return nil, errors.NewIO("query regions", "", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, errors.NewIO("scan region", "", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// SetMeta stores a metadata value.
func SetMeta(ctx context.Context, db *sql.DB, key, value string) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return errors.NewIO("create schema", "", err)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return errors.NewIO("write meta", key, err)
	}
	return nil
}

// Meta returns a stored metadata value.
func Meta(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", errors.NewNotFound("meta", key)
	}
	if err != nil {
		return "", errors.NewIO("read meta", key, err)
	}
	return value, nil
}

// ExportFile writes records and meta to a new or existing database file.
func ExportFile(ctx context.Context, path string, records []any, meta map[string]string) error {
	db, err := Open(path)
	if err != nil {
		return errors.NewIO("open", path, err)
	}
	defer db.Close()

	if err := SaveRecords(ctx, db, records); err != nil {
		return err
	}
	for key, value := range meta {
		if err := SetMeta(ctx, db, key, value); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads the region records stored in the database at path.
func LoadFile(ctx context.Context, path string) ([]any, error) {
	db, err := OpenReadOnly(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer db.Close()
	return LoadRecords(ctx, db)
}
