// Command seed fills a database with demo links and a plausible click
// history, for dashboard development against realistic data.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/linkpulse/linkpulse/internal/db"
	"github.com/linkpulse/linkpulse/internal/models"
	"github.com/linkpulse/linkpulse/internal/shortcode"
)

type seedLink struct {
	name string
	dest string
	// weight controls relative click volume (higher = more clicks)
	weight float64
}

var links = []seedLink{
	{"Blog", "https://example.com/blog", 5.0},
	{"Docs", "https://example.com/docs", 4.5},
	{"Pricing", "https://example.com/pricing", 4.0},
	{"Changelog", "https://example.com/changelog", 3.0},
	{"GitHub Repo", "https://github.com/example/project", 3.5},
	{"Launch Post", "https://example.com/blog/launch", 2.8},
	{"Newsletter", "https://example.com/newsletter", 2.0},
	{"Careers", "https://example.com/careers", 1.5},
	{"Status Page", "https://status.example.com", 1.2},
	{"Community", "https://discord.gg/example", 2.4},
}

var referrers = []struct {
	url    string
	weight float64
}{
	{"https://google.com/search", 30},
	{"", 20}, // direct traffic
	{"https://github.com/example/project", 15},
	{"https://twitter.com/example", 8},
	{"https://reddit.com/r/golang", 7},
	{"https://news.ycombinator.com/item", 5},
	{"https://linkedin.com/company/example", 4},
	{"https://dev.to/example", 3},
}

var locations = []struct {
	country, city, region string
	lat, lon              float64
	weight                float64
}{
	{"United States", "New York", "New York", 40.71, -74.01, 20},
	{"United States", "San Francisco", "California", 37.77, -122.42, 12},
	{"India", "Bengaluru", "Karnataka", 12.97, 77.59, 15},
	{"Germany", "Berlin", "Berlin", 52.52, 13.40, 8},
	{"United Kingdom", "London", "England", 51.51, -0.13, 7},
	{"Brazil", "São Paulo", "São Paulo", -23.55, -46.63, 6},
	{"France", "Paris", "Île-de-France", 48.86, 2.35, 5},
	{"Canada", "Toronto", "Ontario", 43.65, -79.38, 4},
	{"Australia", "Sydney", "New South Wales", -33.87, 151.21, 3},
	{"Japan", "Tokyo", "Tokyo", 35.68, 139.69, 3},
	{"Netherlands", "Amsterdam", "North Holland", 52.37, 4.90, 2},
	{"Singapore", "Singapore", "Singapore", 1.35, 103.82, 2},
}

var userAgents = []struct {
	ua     string
	weight float64
}{
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", 40},
	{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15", 15},
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0", 12},
	{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", 12},
	{"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36", 10},
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0", 6},
	{"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", 5},
}

func main() {
	dbPath := os.Getenv("LINKPULSE_DB_PATH")
	if dbPath == "" {
		dbPath = "./linkpulse.db"
	}

	database, err := db.Open(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer database.Close()

	rng := rand.New(rand.NewSource(42)) // deterministic seed
	now := time.Now().UTC()
	twoMonthsAgo := now.AddDate(0, -2, 0)

	fmt.Println("Seeding links...")

	created := make([]models.Link, 0, len(links))
	for i, sl := range links {
		code, err := shortcode.Generate()
		if err != nil {
			log.Fatalf("generate short code: %v", err)
		}

		link := models.Link{
			ID:          uuid.NewString(),
			Name:        sl.name,
			OriginalURL: sl.dest,
			ShortCode:   code,
		}
		if err := models.CreateLink(database, &link); err != nil {
			log.Fatalf("create link %q: %v", sl.name, err)
		}

		// Backdate the created_at, staggered over the first weeks
		createdAt := twoMonthsAgo.Add(time.Duration(i*3) * 24 * time.Hour)
		if _, err := database.Exec(`UPDATE links SET created_at = ? WHERE id = ?`, createdAt, link.ID); err != nil {
			log.Fatalf("backdate link %q: %v", sl.name, err)
		}
		link.CreatedAt = createdAt

		created = append(created, link)
		fmt.Printf("  /track/%s → %s\n", link.ShortCode, sl.name)
	}

	fmt.Println("\nGenerating clicks...")

	totalClicks := 0
	for i, sl := range links {
		link := created[i]
		baseClicksPerDay := sl.weight * 6

		var clicks []models.Click
		for day := link.CreatedAt; day.Before(now); day = day.Add(24 * time.Hour) {
			// Daily variance plus a weekend dip
			variance := 0.6 + rng.Float64()*0.8
			weekday := 1.0
			if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
				weekday = 0.4
			}

			for j := 0; j < int(baseClicksPerDay*variance*weekday); j++ {
				clickTime := day.Add(time.Duration(rng.Intn(24*3600)) * time.Second)
				if clickTime.After(now) {
					continue
				}
				clicks = append(clicks, randomClick(rng, link.ID, clickTime))
			}

			if len(clicks) >= 500 {
				if err := models.BatchInsertClicks(database, clicks); err != nil {
					log.Fatalf("insert clicks for %q: %v", sl.name, err)
				}
				totalClicks += len(clicks)
				clicks = clicks[:0]
			}
		}

		if len(clicks) > 0 {
			if err := models.BatchInsertClicks(database, clicks); err != nil {
				log.Fatalf("insert clicks for %q: %v", sl.name, err)
			}
			totalClicks += len(clicks)
		}
	}

	fmt.Printf("\nDone! Created %d links with %d total clicks.\n", len(created), totalClicks)
	fmt.Printf("Database: %s\n", dbPath)
}

func randomClick(rng *rand.Rand, linkID string, at time.Time) models.Click {
	loc := pickLocation(rng)
	ip := fmt.Sprintf("%d.%d.%d.%d", rng.Intn(204)+20, rng.Intn(256), rng.Intn(256), rng.Intn(256))
	ua := pickUserAgent(rng)
	referer := pickReferer(rng)

	c := models.Click{
		LinkID:    linkID,
		IP:        &ip,
		Country:   &loc.country,
		City:      &loc.city,
		Region:    &loc.region,
		Latitude:  &loc.lat,
		Longitude: &loc.lon,
		UserAgent: &ua,
		CreatedAt: at,
	}
	if referer != "" {
		c.Referer = &referer
	}
	return c
}

func pickLocation(rng *rand.Rand) struct {
	country, city, region string
	lat, lon              float64
	weight                float64
} {
	var total float64
	for _, l := range locations {
		total += l.weight
	}
	v := rng.Float64() * total
	for _, l := range locations {
		v -= l.weight
		if v <= 0 {
			return l
		}
	}
	return locations[0]
}

func pickUserAgent(rng *rand.Rand) string {
	var total float64
	for _, u := range userAgents {
		total += u.weight
	}
	v := rng.Float64() * total
	for _, u := range userAgents {
		v -= u.weight
		if v <= 0 {
			return u.ua
		}
	}
	return userAgents[0].ua
}

func pickReferer(rng *rand.Rand) string {
	var total float64
	for _, r := range referrers {
		total += r.weight
	}
	v := rng.Float64() * total
	for _, r := range referrers {
		v -= r.weight
		if v <= 0 {
			return r.url
		}
	}
	return referrers[0].url
}
