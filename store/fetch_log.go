package store

import (
	"database/sql"
	"errors"
	"time"
)

// FetchLog is one screen activation: which plant loaded which screen and
// how it went. Record contents are never stored.
type FetchLog struct {
	ID          int64     `json:"id"`
	Plant       string    `json:"plant"`
	Screen      string    `json:"screen"`
	OK          bool      `json:"ok"`
	RecordCount int       `json:"record_count"`
	Error       string    `json:"error,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

const fetchLogColumns = `id, plant, screen, ok, record_count, error, duration_ms, created_at`

func (db *DB) InsertFetchLog(l *FetchLog) error {
	var id int64
	if db.driver == "postgres" {
		err := db.QueryRow(db.Q(`INSERT INTO fetch_log (plant, screen, ok, record_count, error, duration_ms) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
			l.Plant, l.Screen, l.OK, l.RecordCount, l.Error, l.DurationMS).Scan(&id)
		if err != nil {
			return err
		}
	} else {
		res, err := db.Exec(`INSERT INTO fetch_log (plant, screen, ok, record_count, error, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
			l.Plant, l.Screen, l.OK, l.RecordCount, l.Error, l.DurationMS)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
	}
	l.ID = id
	return nil
}

// LatestFetchLog returns the newest entry for a plant and screen, or nil.
func (db *DB) LatestFetchLog(plant, screen string) (*FetchLog, error) {
	row := db.QueryRow(db.Q(`SELECT `+fetchLogColumns+` FROM fetch_log WHERE plant = ? AND screen = ? ORDER BY id DESC LIMIT 1`), plant, screen)
	l, err := scanFetchLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

// ListFetchLog returns the newest entries first.
func (db *DB) ListFetchLog(limit int) ([]*FetchLog, error) {
	rows, err := db.Query(db.Q(`SELECT `+fetchLogColumns+` FROM fetch_log ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*FetchLog
	for rows.Next() {
		l, err := scanFetchLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListFailedFetchLog returns the newest failed activations first.
func (db *DB) ListFailedFetchLog(limit int) ([]*FetchLog, error) {
	rows, err := db.Query(db.Q(`SELECT `+fetchLogColumns+` FROM fetch_log WHERE ok = `+db.dialect.BoolFalse()+` ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*FetchLog
	for rows.Next() {
		l, err := scanFetchLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFetchLog(s scanner) (*FetchLog, error) {
	var l FetchLog
	var createdAt any
	if err := s.Scan(&l.ID, &l.Plant, &l.Screen, &l.OK, &l.RecordCount, &l.Error, &l.DurationMS, &createdAt); err != nil {
		return nil, err
	}
	l.CreatedAt = parseTime(createdAt)
	return &l, nil
}
