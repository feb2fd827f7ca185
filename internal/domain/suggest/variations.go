// Package suggest derives plausible alternate vanity names from input that
// failed exact resolution. Derivation is pure; callers probe the candidates
// against the remote resolver.
package suggest

import (
	"regexp"
	"strings"
)

// Caps applied to the derived candidate set.
const (
	// MaxCandidates bounds the set handed to the prober.
	MaxCandidates = 12
	// minRunes is the shortest candidate worth probing.
	minRunes = 3
)

var (
	decorativeMarks = regexp.MustCompile("[®©™℠°•·‚„“”‘’‹›«»]")
	digits          = regexp.MustCompile(`\d+`)

	// Substitution chain applied sequentially: each rule transforms the
	// result of the previous one and every distinct intermediate is kept.
	substitutions = []*regexp.Regexp{
		regexp.MustCompile("®"),
		regexp.MustCompile("©"),
		regexp.MustCompile("™"),
		regexp.MustCompile("[°•·]"),
		regexp.MustCompile("[‘’]"),
		regexp.MustCompile("[“”]"),
		regexp.MustCompile(`\s+`),
		regexp.MustCompile(`[_-]`),
	}
)

// Variations derives a deduplicated, ordered set of alternate vanity names
// from a failed lookup. Candidates shorter than three characters are
// discarded and the set is capped at MaxCandidates. Derivation order is
// preserved so that cheaper fixes are probed first.
func Variations(input string) []string {
	original := strings.ToLower(strings.TrimSpace(input))

	seen := make(map[string]struct{})
	out := make([]string, 0, MaxCandidates)
	add := func(v string) {
		if len([]rune(v)) < minRunes {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	add(original)

	// Single pass with every decorative mark removed.
	if cleaned := decorativeMarks.ReplaceAllString(original, ""); cleaned != original {
		add(cleaned)
	}

	// Sequential substitutions, each applied to the progressively
	// transformed string.
	working := original
	for _, re := range substitutions {
		replaced := re.ReplaceAllString(working, "")
		if replaced != working && len([]rune(replaced)) >= minRunes {
			add(replaced)
			working = replaced
		}
	}

	if noDigits := digits.ReplaceAllString(original, ""); noDigits != original {
		add(noDigits)
	}

	if r := []rune(original); len(r) > 3 {
		add(original + "1")
		add(original + "2")
		add(original + "123")
		add("the" + original)
		add(original + "gaming")
		add(original + "yt")
		add(original + "tv")

		// Typo corrections: dropped characters at either end.
		add(string(r[:len(r)-1]))
		if len(r) > 4 {
			add(string(r[1:]))
		}
		if len(r) > 6 {
			add(string(r[:len(r)-2]))
			add(string(r[1 : len(r)-1]))
		}
	}

	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	return out
}
