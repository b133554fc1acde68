package catalog

import (
	"fmt"
)

// Coordinate is a latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultMapCenter is the coordinate clients fall back to when no
// device position is available (central Tokyo).
var DefaultMapCenter = Coordinate{Lat: 35.6762, Lng: 139.6503}

// Catalog is the ordered built-in location list. Order is insertion
// order from the data file and is the canonical display order; the
// byID index serves lookups.
type Catalog struct {
	locations []Location
	byID      map[string]int
}

// New builds a catalog from an ordered location slice. It rejects
// duplicate ids and entries that fail basic validation, so a bad data
// file is caught at startup rather than at visit time.
func New(locations []Location) (*Catalog, error) {
	c := &Catalog{
		locations: make([]Location, 0, len(locations)),
		byID:      make(map[string]int, len(locations)),
	}
	for i, loc := range locations {
		if loc.ID == "" {
			return nil, fmt.Errorf("catalog entry %d (%q) has no id", i, loc.Name)
		}
		if _, exists := c.byID[loc.ID]; exists {
			return nil, fmt.Errorf("duplicate location id %q", loc.ID)
		}
		if loc.Name == "" {
			return nil, fmt.Errorf("location %q has no name", loc.ID)
		}
		if loc.XPReward <= 0 {
			return nil, fmt.Errorf("location %q has non-positive xp reward %d", loc.ID, loc.XPReward)
		}
		if !validCoordinates(loc.Lat, loc.Lng) {
			return nil, fmt.Errorf("location %q has out-of-range coordinates", loc.ID)
		}
		c.byID[loc.ID] = len(c.locations)
		c.locations = append(c.locations, loc)
	}
	return c, nil
}

// Len returns the number of built-in locations.
func (c *Catalog) Len() int {
	return len(c.locations)
}

// All returns the built-in locations in catalog order. The returned
// slice is a copy; callers may append to it freely.
func (c *Catalog) All() []Location {
	out := make([]Location, len(c.locations))
	copy(out, c.locations)
	return out
}

// Get looks up a built-in location by id.
func (c *Catalog) Get(id string) (Location, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Location{}, false
	}
	return c.locations[idx], true
}

// Series returns the distinct series names in first-appearance order.
func (c *Catalog) Series() []string {
	seen := make(map[string]struct{})
	var series []string
	for _, loc := range c.locations {
		if _, ok := seen[loc.SeriesName]; ok {
			continue
		}
		seen[loc.SeriesName] = struct{}{}
		series = append(series, loc.SeriesName)
	}
	return series
}
