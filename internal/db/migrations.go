package db

import "database/sql"

func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS links (
    id            TEXT PRIMARY KEY,
    name          TEXT    NOT NULL,
    original_url  TEXT    NOT NULL,
    short_code    TEXT    NOT NULL UNIQUE,
    click_count   INTEGER NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_links_short_code ON links(short_code);

CREATE TABLE IF NOT EXISTS clicks (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    link_id     TEXT NOT NULL,
    ip          TEXT,
    country     TEXT,
    city        TEXT,
    region      TEXT,
    latitude    REAL,
    longitude   REAL,
    user_agent  TEXT,
    referer     TEXT,
    created_at  DATETIME NOT NULL,
    FOREIGN KEY (link_id) REFERENCES links(id)
);

CREATE INDEX IF NOT EXISTS idx_clicks_link_id ON clicks(link_id);
CREATE INDEX IF NOT EXISTS idx_clicks_created_at ON clicks(created_at);
`
