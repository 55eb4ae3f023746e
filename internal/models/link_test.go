package models

import (
	"database/sql"
	"testing"
	"time"

	"github.com/linkpulse/linkpulse/internal/db"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func mustCreateLink(t *testing.T, database *sql.DB, id, name, url, code string) *Link {
	t.Helper()
	l := &Link{ID: id, Name: name, OriginalURL: url, ShortCode: code}
	if err := CreateLink(database, l); err != nil {
		t.Fatalf("create link %q: %v", name, err)
	}
	return l
}

func TestCreateLink_RoundTrip(t *testing.T) {
	database := testDB(t)
	l := mustCreateLink(t, database, "id-1", "Blog", "https://example.com", "abc12345")

	if l.ClickCount != 0 {
		t.Errorf("click count = %d, want 0", l.ClickCount)
	}
	if l.CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}

	got, err := GetLinkByShortCode(database, "abc12345")
	if err != nil {
		t.Fatalf("get by short code: %v", err)
	}
	if got.ID != "id-1" || got.Name != "Blog" || got.OriginalURL != "https://example.com" {
		t.Errorf("got %+v", got)
	}
}

func TestCreateLink_DuplicateShortCode(t *testing.T) {
	database := testDB(t)
	mustCreateLink(t, database, "id-1", "A", "https://a.com", "same1234")

	l := &Link{ID: "id-2", Name: "B", OriginalURL: "https://b.com", ShortCode: "same1234"}
	if err := CreateLink(database, l); err == nil {
		t.Fatal("expected unique constraint violation for duplicate short code")
	}
}

func TestGetLinkByShortCode_NotFound(t *testing.T) {
	database := testDB(t)
	if _, err := GetLinkByShortCode(database, "missing1"); err != sql.ErrNoRows {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestListLinks_NewestFirst(t *testing.T) {
	database := testDB(t)
	mustCreateLink(t, database, "id-1", "Old", "https://a.com", "code0001")
	mustCreateLink(t, database, "id-2", "New", "https://b.com", "code0002")

	// Force distinct timestamps; CURRENT_TIMESTAMP has second precision
	now := time.Now().UTC()
	if _, err := database.Exec(`UPDATE links SET created_at = ? WHERE id = 'id-1'`, now.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := database.Exec(`UPDATE links SET created_at = ? WHERE id = 'id-2'`, now); err != nil {
		t.Fatal(err)
	}

	links, err := ListLinks(database)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 2 {
		t.Fatalf("len = %d, want 2", len(links))
	}
	if links[0].Name != "New" || links[1].Name != "Old" {
		t.Errorf("order = [%s, %s], want [New, Old]", links[0].Name, links[1].Name)
	}
}

func TestShortCodeExists(t *testing.T) {
	database := testDB(t)
	mustCreateLink(t, database, "id-1", "A", "https://a.com", "exists12")

	exists, err := ShortCodeExists(database, "exists12")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("expected short code to exist")
	}

	exists, err = ShortCodeExists(database, "missing1")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("expected short code to be absent")
	}
}

func TestDeleteLink_CascadesClicks(t *testing.T) {
	database := testDB(t)
	l := mustCreateLink(t, database, "id-1", "A", "https://a.com", "code0001")

	for n := 0; n < 3; n++ {
		click := &Click{LinkID: l.ID, CreatedAt: time.Now().UTC()}
		if err := RecordClick(database, click); err != nil {
			t.Fatal(err)
		}
	}

	if err := DeleteLink(database, l.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var clicks int
	if err := database.QueryRow(`SELECT COUNT(*) FROM clicks WHERE link_id = ?`, l.ID).Scan(&clicks); err != nil {
		t.Fatal(err)
	}
	if clicks != 0 {
		t.Errorf("clicks remaining = %d, want 0", clicks)
	}

	if err := GetLinkByID(database, &Link{ID: l.ID}); err != sql.ErrNoRows {
		t.Errorf("get after delete: err = %v, want sql.ErrNoRows", err)
	}
}

func TestDeleteLink_NotFound(t *testing.T) {
	database := testDB(t)
	if err := DeleteLink(database, "nope"); err != sql.ErrNoRows {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}
