package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/linkpulse/linkpulse/internal/models"
)

// LinkCache is a read-through LRU in front of the short-code lookup on
// the tracking path. Click recording always hits the database, so the
// cache never affects counters or analytics.
type LinkCache struct {
	c *lru.Cache[string, *models.Link]
}

func New(size int) (*LinkCache, error) {
	c, err := lru.New[string, *models.Link](size)
	if err != nil {
		return nil, err
	}
	return &LinkCache{c: c}, nil
}

func (lc *LinkCache) Get(shortCode string) (*models.Link, bool) {
	return lc.c.Get(shortCode)
}

func (lc *LinkCache) Set(shortCode string, link *models.Link) {
	lc.c.Add(shortCode, link)
}

func (lc *LinkCache) Invalidate(shortCode string) {
	lc.c.Remove(shortCode)
}
