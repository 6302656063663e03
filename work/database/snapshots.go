package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"m3u-parser/work/types"
)

// URLHash returns the hex sha3-224 digest used to index stream URLs.
func URLHash(url string) string {
	sum := sha3.Sum224([]byte(url))
	return hex.EncodeToString(sum[:])
}

// SaveSnapshot stores records, in order, as a new snapshot tagged with
// source and returns its id.
func (db *DB) SaveSnapshot(ctx context.Context, source string, records []types.StreamRecord) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "INSERT INTO snapshots (source, record_count) VALUES (?, ?)", source, len(records))
	if err != nil {
		return 0, fmt.Errorf("failed to create snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read snapshot id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO streams (
			snapshot_id, position, url_hash, url, name, logo, category, live,
			tvg_id, tvg_name, tvg_url, country_code, country_name,
			language_code, language_name
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare stream insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			id, i, URLHash(r.URL), r.URL, nullString(r.Name), nullString(r.Logo), nullString(r.Category), nullBool(r.Live),
			nullString(r.Tvg.ID), nullString(r.Tvg.Name), nullString(r.Tvg.URL),
			nullString(r.Country.Code), nullString(r.Country.Name),
			nullString(r.Language.Code), nullString(r.Language.Name),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to save stream %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return id, nil
}

// LatestSnapshotID returns the newest snapshot id for source, or
// sql.ErrNoRows when none exists.
func (db *DB) LatestSnapshotID(ctx context.Context, source string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, "SELECT id FROM snapshots WHERE source = ? ORDER BY id DESC LIMIT 1", source).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// LoadSnapshot returns the records of a snapshot in their saved order.
func (db *DB) LoadSnapshot(ctx context.Context, id int64) ([]types.StreamRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT url, name, logo, category, live, tvg_id, tvg_name, tvg_url,
		       country_code, country_name, language_code, language_name
		FROM streams WHERE snapshot_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot %d: %w", id, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindByURL returns every stored record with the given URL, newest snapshot first.
func (db *DB) FindByURL(ctx context.Context, url string) ([]types.StreamRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT url, name, logo, category, live, tvg_id, tvg_name, tvg_url,
		       country_code, country_name, language_code, language_name
		FROM streams WHERE url_hash = ? AND url = ? ORDER BY snapshot_id DESC, position
	`, URLHash(url), url)
	if err != nil {
		return nil, fmt.Errorf("failed to query url: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]types.StreamRecord, error) {
	records := []types.StreamRecord{}
	for rows.Next() {
		var (
			r                          types.StreamRecord
			name, logo, category       sql.NullString
			tvgID, tvgName, tvgURL     sql.NullString
			countryCode, countryName   sql.NullString
			languageCode, languageName sql.NullString
			live                       sql.NullBool
		)
		err := rows.Scan(&r.URL, &name, &logo, &category, &live, &tvgID, &tvgName, &tvgURL,
			&countryCode, &countryName, &languageCode, &languageName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stream: %w", err)
		}

		r.Name = stringPtr(name)
		r.Logo = stringPtr(logo)
		r.Category = stringPtr(category)
		if live.Valid {
			r.Live = types.BoolPtr(live.Bool)
		}
		r.Tvg = types.Tvg{ID: stringPtr(tvgID), Name: stringPtr(tvgName), URL: stringPtr(tvgURL)}
		r.Country = types.Country{Code: stringPtr(countryCode), Name: stringPtr(countryName)}
		r.Language = types.Language{Code: stringPtr(languageCode), Name: stringPtr(languageName)}

		records = append(records, r)
	}
	return records, rows.Err()
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullBool(p *bool) sql.NullBool {
	if p == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
