// Package geo resolves visitor IPs to an approximate location. It tries
// an optional local MaxMind database first, then a primary HTTP lookup
// service, then a secondary one, and falls back to the Unknown sentinel
// when every source fails.
package geo

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oschwald/maxminddb-golang"
)

// Location is a best-effort visitor location. Empty text fields and nil
// coordinates mean the value is unavailable.
type Location struct {
	Country   string
	City      string
	Region    string
	Latitude  *float64
	Longitude *float64
}

// Local is returned for loopback and private-range IPs without any
// network call.
func Local() Location {
	return Location{Country: "Local", City: "Local", Region: "Local"}
}

// Unknown is returned when both lookup services fail.
func Unknown() Location {
	return Location{Country: "Unknown", City: "Unknown", Region: "Unknown"}
}

type Resolver struct {
	client *http.Client
	mmdb   *maxminddb.Reader

	// Format strings with a single %s verb for the IP.
	primaryURL   string
	secondaryURL string
}

// NewResolver builds a resolver using the given lookup service URL
// templates. mmdbPath is optional; when empty, only the HTTP services
// are consulted.
func NewResolver(primaryURL, secondaryURL, mmdbPath string) (*Resolver, error) {
	r := &Resolver{
		client:       &http.Client{Timeout: 10 * time.Second},
		primaryURL:   primaryURL,
		secondaryURL: secondaryURL,
	}
	if mmdbPath != "" {
		db, err := maxminddb.Open(mmdbPath)
		if err != nil {
			return nil, fmt.Errorf("open geoip database: %w", err)
		}
		r.mmdb = db
	}
	return r, nil
}

func (r *Resolver) Close() {
	if r != nil && r.mmdb != nil {
		r.mmdb.Close()
	}
}

// Resolve maps an IP string to a Location. Private and loopback IPs
// short-circuit to the Local sentinel. Lookup failures are logged and
// absorbed; the caller always gets a usable Location.
func (r *Resolver) Resolve(ip string) Location {
	if isPrivate(ip) {
		return Local()
	}

	if loc, ok := r.lookupLocal(ip); ok {
		return loc
	}

	loc, err := r.lookupPrimary(ip)
	if err == nil {
		return loc
	}
	log.Printf("geo: primary lookup for %s failed: %v", ip, err)

	loc, err = r.lookupSecondary(ip)
	if err == nil {
		return loc
	}
	log.Printf("geo: secondary lookup for %s failed: %v", ip, err)

	return Unknown()
}

// isPrivate reports whether the IP should never leave the process:
// empty, loopback, or in the 10.x / 172.x / 192.168.x ranges.
func isPrivate(ip string) bool {
	if ip == "" {
		return true
	}
	if parsed := net.ParseIP(ip); parsed != nil && parsed.IsLoopback() {
		return true
	}
	for _, prefix := range []string{"10.", "172.", "192.168."} {
		if strings.HasPrefix(ip, prefix) {
			return true
		}
	}
	return false
}

func (r *Resolver) lookupLocal(ipStr string) (Location, bool) {
	if r.mmdb == nil {
		return Location{}, false
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return Location{}, false
	}

	var record struct {
		Country struct {
			Names map[string]string `maxminddb:"names"`
		} `maxminddb:"country"`
		City struct {
			Names map[string]string `maxminddb:"names"`
		} `maxminddb:"city"`
		Subdivisions []struct {
			Names map[string]string `maxminddb:"names"`
		} `maxminddb:"subdivisions"`
		Location struct {
			Latitude  float64 `maxminddb:"latitude"`
			Longitude float64 `maxminddb:"longitude"`
		} `maxminddb:"location"`
	}
	if err := r.mmdb.Lookup(ip, &record); err != nil {
		return Location{}, false
	}
	if record.Country.Names["en"] == "" {
		return Location{}, false
	}

	lat, lon := record.Location.Latitude, record.Location.Longitude
	loc := Location{
		Country:   record.Country.Names["en"],
		City:      record.City.Names["en"],
		Latitude:  &lat,
		Longitude: &lon,
	}
	if len(record.Subdivisions) > 0 {
		loc.Region = record.Subdivisions[0].Names["en"]
	}
	return loc, true
}

// primaryResponse is the ip-api.com shape. Errors are reported in-band
// via status/message.
type primaryResponse struct {
	Status     string   `json:"status"`
	Message    string   `json:"message"`
	Country    string   `json:"country"`
	City       string   `json:"city"`
	RegionName string   `json:"regionName"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
}

func (r *Resolver) lookupPrimary(ip string) (Location, error) {
	var resp primaryResponse
	if err := r.fetch(fmt.Sprintf(r.primaryURL, ip), &resp); err != nil {
		return Location{}, err
	}
	if resp.Status != "success" {
		return Location{}, fmt.Errorf("service reported %q: %s", resp.Status, resp.Message)
	}
	return Location{
		Country:   resp.Country,
		City:      resp.City,
		Region:    resp.RegionName,
		Latitude:  resp.Lat,
		Longitude: resp.Lon,
	}, nil
}

// secondaryResponse is the ipapi.co shape. Errors are reported in-band
// via the error flag.
type secondaryResponse struct {
	Error       bool     `json:"error"`
	Reason      string   `json:"reason"`
	CountryName string   `json:"country_name"`
	City        string   `json:"city"`
	Region      string   `json:"region"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func (r *Resolver) lookupSecondary(ip string) (Location, error) {
	var resp secondaryResponse
	if err := r.fetch(fmt.Sprintf(r.secondaryURL, ip), &resp); err != nil {
		return Location{}, err
	}
	if resp.Error {
		return Location{}, fmt.Errorf("service reported error: %s", resp.Reason)
	}
	return Location{
		Country:   resp.CountryName,
		City:      resp.City,
		Region:    resp.Region,
		Latitude:  resp.Latitude,
		Longitude: resp.Longitude,
	}, nil
}

func (r *Resolver) fetch(url string, out any) error {
	resp, err := r.client.Get(url)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
