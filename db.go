package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/Zachkp/folio/internal/contact"

	_ "modernc.org/sqlite"
)

var db *sql.DB

type PageView struct {
	ID        int       `json:"id"`
	Visitor   string    `json:"visitor"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

type ContactMessage struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func openDB(path string) error {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	// sqlite serialises writers anyway; one connection also keeps
	// :memory: databases shared.
	conn.SetMaxOpenConns(1)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS page_views (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			visitor TEXT NOT NULL,
			user_agent TEXT,
			path TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS section_views (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			section TEXT NOT NULL,
			session_hash TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return fmt.Errorf("create schema: %w", err)
		}
	}

	db = conn
	return nil
}

// storeMessage keeps a copy of every contact message in the inbox table.
func storeMessage(ctx context.Context, v contact.Values) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO messages (name, email, message, created_at)
		VALUES (?, ?, ?, ?)
	`, v.Name, v.Email, v.Message, time.Now())
	if err != nil {
		return fmt.Errorf("store message: %w", err)
	}
	return nil
}

func recordSectionView(section, sessionID string) {
	_, err := db.Exec(`
		INSERT INTO section_views (section, session_hash, timestamp)
		VALUES (?, ?, ?)
	`, section, anonymize(sessionID), time.Now())
	if err != nil {
		log.Printf("Error recording section view: %v", err)
	}
}

func recentMessages(limit int) ([]ContactMessage, error) {
	rows, err := db.Query(`
		SELECT id, name, email, message, created_at
		FROM messages
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []ContactMessage
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			continue
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func deleteMessage(id int) (bool, error) {
	res, err := db.Exec("DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func recordPageView(visitor, userAgent, path string) {
	_, err := db.Exec(`
		INSERT INTO page_views (visitor, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)
	`, visitor, userAgent, path, time.Now())
	if err != nil {
		log.Printf("Error recording page view: %v", err)
	}
}

func recentPageViews(limit int) ([]PageView, error) {
	rows, err := db.Query(`
		SELECT id, visitor, user_agent, path, timestamp
		FROM page_views
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []PageView
	for rows.Next() {
		var v PageView
		if err := rows.Scan(&v.ID, &v.Visitor, &v.UserAgent, &v.Path, &v.Timestamp); err != nil {
			continue
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func sectionStats() ([]SectionStat, error) {
	rows, err := db.Query(`
		SELECT section, COUNT(*) AS views, COUNT(DISTINCT session_hash) AS sessions
		FROM section_views
		GROUP BY section
		ORDER BY views DESC, section
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []SectionStat
	for rows.Next() {
		var s SectionStat
		if err := rows.Scan(&s.Section, &s.Views, &s.Sessions); err != nil {
			continue
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// deleteOlderThan removes rows of table whose timestamp is before the
// sqlite datetime modifier age, such as "-12 months".
func deleteOlderThan(table, age string) (int64, error) {
	res, err := db.Exec(`DELETE FROM `+table+` WHERE timestamp < datetime('now', ?)`, age)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
