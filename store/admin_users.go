package store

import (
	"database/sql"
	"errors"
	"time"
)

// AdminUser is a user who can access the setup page.
type AdminUser struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ErrNoAdminUser is returned by GetAdminUser for an unknown username.
var ErrNoAdminUser = errors.New("admin user not found")

const adminUserColumns = `id, username, password_hash, last_login_at, created_at`

func scanAdminUser(s scanner) (*AdminUser, error) {
	u := &AdminUser{}
	var lastLogin, createdAt any
	if err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &lastLogin, &createdAt); err != nil {
		return nil, err
	}
	if lastLogin != nil {
		if t := parseTime(lastLogin); !t.IsZero() {
			u.LastLoginAt = &t
		}
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

func (db *DB) GetAdminUser(username string) (*AdminUser, error) {
	u, err := scanAdminUser(db.QueryRow(db.Q(`SELECT `+adminUserColumns+` FROM admin_users WHERE username = ?`), username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAdminUser
	}
	return u, err
}

// ListAdminUsers returns every admin account, oldest first.
func (db *DB) ListAdminUsers() ([]*AdminUser, error) {
	rows, err := db.Query(`SELECT ` + adminUserColumns + ` FROM admin_users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []*AdminUser
	for rows.Next() {
		u, err := scanAdminUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (db *DB) CreateAdminUser(username, passwordHash string) error {
	_, err := db.Exec(db.Q(`INSERT INTO admin_users (username, password_hash) VALUES (?, ?)`), username, passwordHash)
	return err
}

func (db *DB) UpdateAdminPassword(username, passwordHash string) error {
	return db.updateAdmin(`UPDATE admin_users SET password_hash = ? WHERE username = ?`, passwordHash, username)
}

// RecordAdminLogin stamps the account's last successful login.
func (db *DB) RecordAdminLogin(username string) error {
	return db.updateAdmin(`UPDATE admin_users SET last_login_at = CURRENT_TIMESTAMP WHERE username = ?`, username)
}

func (db *DB) updateAdmin(query string, args ...any) error {
	res, err := db.Exec(db.Q(query), args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoAdminUser
	}
	return nil
}

func (db *DB) AdminUserExists() (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM admin_users`).Scan(&count)
	return count > 0, err
}
