package chat

import (
	"regexp"
	"strings"
)

// DirectiveType tags the map command a guide reply may carry.
type DirectiveType string

const (
	DirectiveNone     DirectiveType = ""
	DirectiveNavigate DirectiveType = "navigate"
	DirectiveFilter   DirectiveType = "filter"
)

// Directive is the parsed form of an embedded [NAVIGATE:x] or
// [FILTER:y] tag. At most one directive is kept per reply; navigate
// takes precedence when both appear.
type Directive struct {
	Type DirectiveType
	Arg  string
}

var (
	navigatePattern = regexp.MustCompile(`\[NAVIGATE:([^\]]+)\]`)
	filterPattern   = regexp.MustCompile(`\[FILTER:([^\]]+)\]`)
	doubleSpace     = regexp.MustCompile(`[ \t]{2,}`)
)

// ExtractDirective pulls the first directive out of a raw guide reply
// and returns the reply with all directive tags stripped. Replies from
// the model are untrusted: malformed or duplicate tags are removed
// rather than surfaced.
func ExtractDirective(raw string) (Directive, string) {
	directive := Directive{Type: DirectiveNone}

	if m := navigatePattern.FindStringSubmatch(raw); m != nil {
		directive = Directive{Type: DirectiveNavigate, Arg: strings.TrimSpace(m[1])}
	} else if m := filterPattern.FindStringSubmatch(raw); m != nil {
		directive = Directive{Type: DirectiveFilter, Arg: strings.TrimSpace(m[1])}
	}

	clean := navigatePattern.ReplaceAllString(raw, "")
	clean = filterPattern.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(doubleSpace.ReplaceAllString(clean, " "))

	if directive.Arg == "" {
		directive.Type = DirectiveNone
	}
	return directive, clean
}
