package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Difficulty grades how hard a location is to reach in person.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Category buckets locations for filtering. CategoryUserSubmitted is
// reserved for locations added at runtime and is never used by the
// built-in catalog.
const (
	CategoryAnime         = "anime"
	CategoryManga         = "manga"
	CategoryMovies        = "movies"
	CategoryGaming        = "gaming"
	CategoryUserSubmitted = "user-submitted"

	// CategoryAll is the filter value that matches every category.
	CategoryAll = "all"
)

// Location is a single pilgrimage spot tied to a series.
type Location struct {
	Name        string     `json:"name"`
	ID          string     `json:"id"`
	SeriesName  string     `json:"series_name"`
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url,omitempty"`
	XPReward    int        `json:"xp_reward"`
	Difficulty  Difficulty `json:"difficulty"`
	Category    string     `json:"category"`

	// Set only on user-submitted locations.
	DisplayCategory string     `json:"display_category,omitempty"`
	Comment         string     `json:"comment,omitempty"`
	SubmittedBy     string     `json:"submitted_by,omitempty"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
}

// Draft holds the user-entered fields of a location submission,
// before the store assigns an id and reward.
type Draft struct {
	Name        string  `json:"name"`
	SeriesName  string  `json:"series_name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Comment     string  `json:"comment,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

var (
	ErrNameRequired        = errors.New("location name is required")
	ErrCategoryRequired    = errors.New("location category is required")
	ErrDescriptionRequired = errors.New("location description is required")
	ErrCoordinatesInvalid  = errors.New("coordinates must be finite, lat in [-90,90] and lng in [-180,180]")
)

// Validate checks the draft's required fields and coordinate bounds.
// It reports the first problem found; callers treat any error as a
// validation rejection with no state change.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrCategoryRequired
	}
	if strings.TrimSpace(d.Description) == "" {
		return ErrDescriptionRequired
	}
	if !validCoordinates(d.Lat, d.Lng) {
		return fmt.Errorf("%w: lat=%v lng=%v", ErrCoordinatesInvalid, d.Lat, d.Lng)
	}
	return nil
}

func validCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// MatchesQuery reports whether the location matches a free-text search:
// case-insensitive substring match on name, description or series name.
func (l Location) MatchesQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Name), q) ||
		strings.Contains(strings.ToLower(l.Description), q) ||
		strings.Contains(strings.ToLower(l.SeriesName), q)
}

// MatchesSeries reports whether the location's series name contains the
// given filter string, case-insensitively.
func (l Location) MatchesSeries(series string) bool {
	s := strings.ToLower(strings.TrimSpace(series))
	if s == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.SeriesName), s)
}

// MatchesNameOrSeries is the navigation-resolution predicate:
// case-insensitive substring match on either name or series name.
func (l Location) MatchesNameOrSeries(nameOrSeries string) bool {
	q := strings.ToLower(strings.TrimSpace(nameOrSeries))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(l.Name), q) ||
		strings.Contains(strings.ToLower(l.SeriesName), q)
}
