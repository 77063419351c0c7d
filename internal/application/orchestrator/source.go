package orchestrator

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

// ChannelSite is an active channel with the URL of its primary site, if any.
type ChannelSite struct {
	ChannelID   int64
	ChannelName string
	SiteURL     string
	SiteName    string
}

// ChannelSource lists the active channels a storefront should exist for.
type ChannelSource interface {
	ActiveChannels(ctx context.Context) ([]ChannelSite, error)
}

const activeChannelsQuery = `SELECT c.id, c.name, COALESCE(s.url, ''), COALESCE(s.site_name, '')
FROM channels c
LEFT JOIN sites s ON s.channel_id = c.id AND s.is_primary = true
WHERE c.status = 'active'
ORDER BY c.id`

// SQLSource reads channels straight from the commerce database.
type SQLSource struct {
	db *sql.DB
}

// NewSQLSource wraps an open database handle.
func NewSQLSource(db *sql.DB) *SQLSource {
	return &SQLSource{db: db}
}

// OpenSQLSource connects to the postgres database at dsn with a single
// connection. The caller closes the returned *sql.DB.
func OpenSQLSource(ctx context.Context, dsn string) (*SQLSource, *sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return NewSQLSource(db), db, nil
}

// ActiveChannels returns active channels ordered by id. A channel with
// several primary sites appears once per site.
func (s *SQLSource) ActiveChannels(ctx context.Context) ([]ChannelSite, error) {
	rows, err := s.db.QueryContext(ctx, activeChannelsQuery)
	if err != nil {
		return nil, fmt.Errorf("query active channels: %w", err)
	}
	defer rows.Close()

	var out []ChannelSite
	for rows.Next() {
		var cs ChannelSite
		if err := rows.Scan(&cs.ChannelID, &cs.ChannelName, &cs.SiteURL, &cs.SiteName); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		out = append(out, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read channels: %w", err)
	}
	return out, nil
}

// ExistingSites returns the names of the directories directly under dir. A
// missing dir has no sites.
func ExistingSites(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sites dir %s: %w", dir, err)
	}
	out := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			out[e.Name()] = true
		}
	}
	return out, nil
}
