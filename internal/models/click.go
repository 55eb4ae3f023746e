package models

import (
	"database/sql"
	"fmt"
	"time"
)

type Click struct {
	ID        int64     `json:"id"`
	LinkID    string    `json:"linkId"`
	IP        *string   `json:"ip"`
	Country   *string   `json:"country"`
	City      *string   `json:"city"`
	Region    *string   `json:"region"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	UserAgent *string   `json:"userAgent"`
	Referer   *string   `json:"referer"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecordClick inserts the click and increments the owning link's
// denormalized counter as a single transaction, so the counter never
// drifts from the click rows on a partial failure.
func RecordClick(db *sql.DB, c *Click) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO clicks (link_id, ip, country, city, region, latitude, longitude, user_agent, referer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.LinkID, c.IP, c.Country, c.City, c.Region, c.Latitude, c.Longitude, c.UserAgent, c.Referer, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	id, _ := res.LastInsertId()
	c.ID = id

	if _, err := tx.Exec(`UPDATE links SET click_count = click_count + 1 WHERE id = ?`, c.LinkID); err != nil {
		return fmt.Errorf("increment click count: %w", err)
	}

	return tx.Commit()
}

// BatchInsertClicks inserts many clicks in one transaction and resyncs
// the denormalized counters from the click rows. Used by tooling that
// generates historical data; the tracking path uses RecordClick.
func BatchInsertClicks(db *sql.DB, clicks []Click) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO clicks (link_id, ip, country, city, region, latitude, longitude, user_agent, referer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range clicks {
		_, err := stmt.Exec(
			c.LinkID, c.IP, c.Country, c.City, c.Region,
			c.Latitude, c.Longitude, c.UserAgent, c.Referer, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert click: %w", err)
		}
	}

	_, err = tx.Exec(`UPDATE links SET click_count = (SELECT COUNT(*) FROM clicks WHERE clicks.link_id = links.id)`)
	if err != nil {
		return fmt.Errorf("resync click counts: %w", err)
	}

	return tx.Commit()
}

func ListClicksForLink(db *sql.DB, linkID string) ([]Click, error) {
	rows, err := db.Query(
		`SELECT id, link_id, ip, country, city, region, latitude, longitude, user_agent, referer, created_at
		FROM clicks WHERE link_id = ? ORDER BY created_at DESC, id DESC`,
		linkID,
	)
	if err != nil {
		return nil, fmt.Errorf("list clicks: %w", err)
	}
	defer rows.Close()

	var clicks []Click
	for rows.Next() {
		var c Click
		if err := scanClick(rows, &c); err != nil {
			return nil, err
		}
		clicks = append(clicks, c)
	}
	return clicks, rows.Err()
}

func scanClick(rows *sql.Rows, c *Click) error {
	if err := rows.Scan(
		&c.ID, &c.LinkID, &c.IP, &c.Country, &c.City, &c.Region,
		&c.Latitude, &c.Longitude, &c.UserAgent, &c.Referer, &c.CreatedAt,
	); err != nil {
		return fmt.Errorf("scan click: %w", err)
	}
	return nil
}
