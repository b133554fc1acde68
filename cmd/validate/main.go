package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/nakamago/pilgrimage/pkg/catalog"
)

// Validates a catalog data file before deployment. Catches what the
// startup check catches, plus style issues (id format, difficulty
// values, missing descriptions) that are tolerated at runtime but
// rejected for shipped data.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <locations.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &CatalogValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Catalog file is valid!")
}

type CatalogValidator struct {
	errors []string
}

func (v *CatalogValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var locations []catalog.Location
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&locations); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	// The runtime constructor enforces ids, names, coordinates, and xp.
	if _, err := catalog.New(locations); err != nil {
		v.addError(err.Error())
	}

	for _, loc := range locations {
		v.validateLocation(&loc)
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *CatalogValidator) validateLocation(loc *catalog.Location) {
	if !validIDRegex.MatchString(loc.ID) {
		v.addError(fmt.Sprintf("location id '%s' should be lowercase snake_case", loc.ID))
	}
	if loc.SeriesName == "" {
		v.addError(fmt.Sprintf("location '%s' has no series_name", loc.ID))
	}
	if loc.Description == "" {
		v.addError(fmt.Sprintf("location '%s' has no description", loc.ID))
	}
	if loc.Category == "" {
		v.addError(fmt.Sprintf("location '%s' has no category", loc.ID))
	}
	if loc.Category == catalog.CategoryUserSubmitted {
		v.addError(fmt.Sprintf("location '%s' uses the reserved user-submitted category", loc.ID))
	}
	switch loc.Difficulty {
	case catalog.DifficultyEasy, catalog.DifficultyMedium, catalog.DifficultyHard:
	default:
		v.addError(fmt.Sprintf("location '%s' has unknown difficulty '%s'", loc.ID, loc.Difficulty))
	}
}

func (v *CatalogValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
