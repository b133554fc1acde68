package state

import (
	"github.com/nakamago/pilgrimage/pkg/catalog"
)

// FilterCriteria is the ephemeral map-view filter. An empty Category
// is read as CategoryAll.
type FilterCriteria struct {
	Series   string `json:"series,omitempty"`
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`
}

func (f FilterCriteria) category() string {
	if f.Category == "" {
		return catalog.CategoryAll
	}
	return f.Category
}

// FilterUpdate is a partial filter change: nil fields keep their prior
// value, non-nil fields replace it (an explicit empty string clears).
type FilterUpdate struct {
	Series   *string `json:"series,omitempty"`
	Query    *string `json:"query,omitempty"`
	Category *string `json:"category,omitempty"`
}

// SetFilter applies a partial update to the filter criteria.
func (s *Session) SetFilter(update FilterUpdate) {
	if update.Series != nil {
		s.Filter.Series = *update.Series
	}
	if update.Query != nil {
		s.Filter.Query = *update.Query
	}
	if update.Category != nil {
		s.Filter.Category = *update.Category
	}
}

// ClearSeriesFilter resets the series filter.
func (s *Session) ClearSeriesFilter() { s.Filter.Series = "" }

// ClearQuery resets the free-text search.
func (s *Session) ClearQuery() { s.Filter.Query = "" }

// ClearCategory resets the category filter to "all".
func (s *Session) ClearCategory() { s.Filter.Category = catalog.CategoryAll }

// RequestFilter sets the series filter verbatim, as instructed by a
// parsed guide directive. The series is not validated against the
// catalog; an unmatched filter simply yields an empty view.
func (s *Session) RequestFilter(series string) {
	s.Filter.Series = series
}

// FilteredLocations applies the session's filter criteria to the
// combined catalog: built-in locations in catalog order, then
// user-submitted locations in insertion order. The three predicates
// compose conjunctively.
func (s *Session) FilteredLocations(cat *catalog.Catalog) []catalog.Location {
	all := append(cat.All(), s.Submitted...)
	category := s.Filter.category()

	out := make([]catalog.Location, 0, len(all))
	for _, loc := range all {
		if category != catalog.CategoryAll && loc.Category != category {
			continue
		}
		if !loc.MatchesQuery(s.Filter.Query) {
			continue
		}
		if !loc.MatchesSeries(s.Filter.Series) {
			continue
		}
		out = append(out, loc)
	}
	return out
}

// RequestNavigation resolves a guide navigation directive to a
// location by case-insensitive substring match on name or series name.
// Built-in locations win ties over user-submitted ones, earlier
// entries over later. Returns false when nothing matches.
func (s *Session) RequestNavigation(cat *catalog.Catalog, nameOrSeries string) (catalog.Location, bool) {
	for _, loc := range cat.All() {
		if loc.MatchesNameOrSeries(nameOrSeries) {
			return loc, true
		}
	}
	for _, loc := range s.Submitted {
		if loc.MatchesNameOrSeries(nameOrSeries) {
			return loc, true
		}
	}
	return catalog.Location{}, false
}
