package models

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/linkpulse/linkpulse/internal/visitor"
)

type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

type CityCount struct {
	City    string  `json:"city"`
	Country *string `json:"country"`
	Count   int     `json:"count"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type BrowserCount struct {
	Browser string `json:"browser"`
	Count   int    `json:"count"`
}

type DeviceCount struct {
	Device string `json:"device"`
	Count  int    `json:"count"`
}

type LinkAnalytics struct {
	TotalClicks     int            `json:"totalClicks"`
	Clicks          []Click        `json:"clicks"`
	ClicksByCountry []CountryCount `json:"clicksByCountry"`
	ClicksByCity    []CityCount    `json:"clicksByCity"`
	ClicksByDay     []DayCount     `json:"clicksByDay"`
	ClicksByBrowser []BrowserCount `json:"clicksByBrowser"`
	ClicksByDevice  []DeviceCount  `json:"clicksByDevice"`
}

// RecentClick is a click joined with its link's display fields, for the
// global dashboard feed.
type RecentClick struct {
	Click
	LinkName  string `json:"linkName"`
	ShortCode string `json:"shortCode"`
}

type TopLink struct {
	Link
	WeekClicks int `json:"weekClicks"`
}

type GlobalAnalytics struct {
	TotalLinks   int           `json:"totalLinks"`
	TotalClicks  int           `json:"totalClicks"`
	RecentClicks []RecentClick `json:"recentClicks"`
	TopLinks     []TopLink     `json:"topLinks"`
}

// GetLinkAnalytics builds the per-link summary: total count, full click
// list (newest first), country and city breakdowns, and the trailing
// 30-day daily series.
func GetLinkAnalytics(db *sql.DB, linkID string) (*LinkAnalytics, error) {
	a := &LinkAnalytics{
		Clicks:          []Click{},
		ClicksByCountry: []CountryCount{},
		ClicksByCity:    []CityCount{},
		ClicksByDay:     []DayCount{},
	}

	if err := db.QueryRow(`SELECT COUNT(*) FROM clicks WHERE link_id = ?`, linkID).Scan(&a.TotalClicks); err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}

	clicks, err := ListClicksForLink(db, linkID)
	if err != nil {
		return nil, err
	}
	if clicks != nil {
		a.Clicks = clicks
	}

	byCountry, err := clicksByCountry(db, linkID)
	if err != nil {
		return nil, err
	}
	a.ClicksByCountry = byCountry

	byCity, err := clicksByCity(db, linkID)
	if err != nil {
		return nil, err
	}
	a.ClicksByCity = byCity

	byDay, err := clicksByDay(db, linkID)
	if err != nil {
		return nil, err
	}
	a.ClicksByDay = byDay

	a.ClicksByBrowser, a.ClicksByDevice = classifyClicks(a.Clicks)

	return a, nil
}

// classifyClicks buckets stored user agents into browser and device
// counts. User agents are classified on read; only the raw string is
// persisted.
func classifyClicks(clicks []Click) ([]BrowserCount, []DeviceCount) {
	browsers := make(map[string]int)
	devices := make(map[string]int)
	for _, c := range clicks {
		if c.UserAgent == nil || *c.UserAgent == "" {
			continue
		}
		agent := visitor.Classify(*c.UserAgent)
		browsers[agent.Browser]++
		devices[agent.Device]++
	}

	byBrowser := make([]BrowserCount, 0, len(browsers))
	for b, n := range browsers {
		byBrowser = append(byBrowser, BrowserCount{Browser: b, Count: n})
	}
	sort.Slice(byBrowser, func(i, j int) bool {
		if byBrowser[i].Count != byBrowser[j].Count {
			return byBrowser[i].Count > byBrowser[j].Count
		}
		return byBrowser[i].Browser < byBrowser[j].Browser
	})

	byDevice := make([]DeviceCount, 0, len(devices))
	for d, n := range devices {
		byDevice = append(byDevice, DeviceCount{Device: d, Count: n})
	}
	sort.Slice(byDevice, func(i, j int) bool {
		if byDevice[i].Count != byDevice[j].Count {
			return byDevice[i].Count > byDevice[j].Count
		}
		return byDevice[i].Device < byDevice[j].Device
	})

	return byBrowser, byDevice
}

func clicksByCountry(db *sql.DB, linkID string) ([]CountryCount, error) {
	rows, err := db.Query(
		`SELECT country, COUNT(*) as cnt FROM clicks
		WHERE link_id = ? AND country IS NOT NULL
		GROUP BY country ORDER BY cnt DESC, country`,
		linkID,
	)
	if err != nil {
		return nil, fmt.Errorf("clicks by country: %w", err)
	}
	defer rows.Close()

	results := []CountryCount{}
	for rows.Next() {
		var c CountryCount
		if err := rows.Scan(&c.Country, &c.Count); err != nil {
			return nil, fmt.Errorf("scan country count: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func clicksByCity(db *sql.DB, linkID string) ([]CityCount, error) {
	rows, err := db.Query(
		`SELECT city, country, COUNT(*) as cnt FROM clicks
		WHERE link_id = ? AND city IS NOT NULL
		GROUP BY city, country ORDER BY cnt DESC, city LIMIT 10`,
		linkID,
	)
	if err != nil {
		return nil, fmt.Errorf("clicks by city: %w", err)
	}
	defer rows.Close()

	results := []CityCount{}
	for rows.Next() {
		var c CityCount
		if err := rows.Scan(&c.City, &c.Country, &c.Count); err != nil {
			return nil, fmt.Errorf("scan city count: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func clicksByDay(db *sql.DB, linkID string) ([]DayCount, error) {
	rows, err := db.Query(
		`SELECT date(created_at) as day, COUNT(*) as cnt FROM clicks
		WHERE link_id = ? AND created_at >= datetime('now', '-30 days')
		GROUP BY day ORDER BY day ASC`,
		linkID,
	)
	if err != nil {
		return nil, fmt.Errorf("clicks by day: %w", err)
	}
	defer rows.Close()

	results := []DayCount{}
	for rows.Next() {
		var d DayCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

// GetGlobalAnalytics builds the dashboard summary across all links.
func GetGlobalAnalytics(db *sql.DB) (*GlobalAnalytics, error) {
	a := &GlobalAnalytics{
		RecentClicks: []RecentClick{},
		TopLinks:     []TopLink{},
	}

	if err := db.QueryRow(`SELECT COUNT(*) FROM links`).Scan(&a.TotalLinks); err != nil {
		return nil, fmt.Errorf("count links: %w", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM clicks`).Scan(&a.TotalClicks); err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}

	recent, err := recentClicks(db, 10)
	if err != nil {
		return nil, err
	}
	a.RecentClicks = recent

	top, err := topLinks(db, 5)
	if err != nil {
		return nil, err
	}
	a.TopLinks = top

	return a, nil
}

func recentClicks(db *sql.DB, limit int) ([]RecentClick, error) {
	rows, err := db.Query(
		`SELECT c.id, c.link_id, c.ip, c.country, c.city, c.region, c.latitude, c.longitude,
			c.user_agent, c.referer, c.created_at, l.name, l.short_code
		FROM clicks c
		JOIN links l ON l.id = c.link_id
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent clicks: %w", err)
	}
	defer rows.Close()

	results := []RecentClick{}
	for rows.Next() {
		var rc RecentClick
		if err := rows.Scan(
			&rc.ID, &rc.LinkID, &rc.IP, &rc.Country, &rc.City, &rc.Region,
			&rc.Latitude, &rc.Longitude, &rc.UserAgent, &rc.Referer, &rc.CreatedAt,
			&rc.LinkName, &rc.ShortCode,
		); err != nil {
			return nil, fmt.Errorf("scan recent click: %w", err)
		}
		results = append(results, rc)
	}
	return results, rows.Err()
}

// topLinks ranks links by clicks in the trailing 7 days, breaking ties
// with the all-time click count.
func topLinks(db *sql.DB, limit int) ([]TopLink, error) {
	rows, err := db.Query(
		`SELECT l.id, l.name, l.original_url, l.short_code, l.click_count, l.created_at,
			COUNT(CASE WHEN c.created_at >= datetime('now', '-7 days') THEN 1 END) as week_clicks,
			COUNT(c.id) as all_time
		FROM links l
		LEFT JOIN clicks c ON c.link_id = l.id
		GROUP BY l.id
		ORDER BY week_clicks DESC, all_time DESC, l.created_at DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top links: %w", err)
	}
	defer rows.Close()

	results := []TopLink{}
	for rows.Next() {
		var tl TopLink
		var allTime int
		if err := rows.Scan(
			&tl.ID, &tl.Name, &tl.OriginalURL, &tl.ShortCode, &tl.ClickCount, &tl.CreatedAt,
			&tl.WeekClicks, &allTime,
		); err != nil {
			return nil, fmt.Errorf("scan top link: %w", err)
		}
		results = append(results, tl)
	}
	return results, rows.Err()
}
