package models

import (
	"database/sql"
	"fmt"
	"time"
)

type Link struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OriginalURL string    `json:"originalUrl"`
	ShortCode   string    `json:"shortCode"`
	ClickCount  int       `json:"clickCount"`
	CreatedAt   time.Time `json:"createdAt"`
	TrackingURL string    `json:"trackingUrl,omitempty"`
}

func (l *Link) FillTrackingURL(baseURL string) {
	l.TrackingURL = baseURL + "/track/" + l.ShortCode
}

func CreateLink(db *sql.DB, l *Link) error {
	_, err := db.Exec(
		`INSERT INTO links (id, name, original_url, short_code) VALUES (?, ?, ?, ?)`,
		l.ID, l.Name, l.OriginalURL, l.ShortCode,
	)
	if err != nil {
		return fmt.Errorf("insert link: %w", err)
	}

	// Re-read to get timestamps
	return GetLinkByID(db, l)
}

func GetLinkByID(db *sql.DB, l *Link) error {
	row := db.QueryRow(`SELECT id, name, original_url, short_code, click_count, created_at FROM links WHERE id = ?`, l.ID)
	return scanLink(row, l)
}

func GetLinkByShortCode(db *sql.DB, shortCode string) (*Link, error) {
	l := &Link{}
	row := db.QueryRow(
		`SELECT id, name, original_url, short_code, click_count, created_at FROM links WHERE short_code = ?`,
		shortCode,
	)
	if err := scanLink(row, l); err != nil {
		return nil, err
	}
	return l, nil
}

func ListLinks(db *sql.DB) ([]Link, error) {
	rows, err := db.Query(`SELECT id, name, original_url, short_code, click_count, created_at FROM links ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.ID, &l.Name, &l.OriginalURL, &l.ShortCode, &l.ClickCount, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// DeleteLink removes the link's clicks and the link itself in one
// transaction. Returns sql.ErrNoRows if the link does not exist.
func DeleteLink(db *sql.DB, id string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM clicks WHERE link_id = ?`, id); err != nil {
		return fmt.Errorf("delete clicks: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM links WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

func ShortCodeExists(db *sql.DB, shortCode string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM links WHERE short_code = ?`, shortCode).Scan(&count)
	return count > 0, err
}

func scanLink(row *sql.Row, l *Link) error {
	return row.Scan(&l.ID, &l.Name, &l.OriginalURL, &l.ShortCode, &l.ClickCount, &l.CreatedAt)
}
