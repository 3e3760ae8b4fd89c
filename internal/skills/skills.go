package skills

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"unicode"
)

// DefaultEffortHours is used for skills missing from the effort table.
const DefaultEffortHours = 24.0

var nonSkillChars = regexp.MustCompile(`[^a-z0-9+ ]+`)

var aliases = map[string]string{
	"c plus plus":                    "c++",
	"cpp":                            "c++",
	"object oriented programming":    "oops",
	"oop":                            "oops",
	"data structures and algorithms": "dsa",
	"data structures algorithms":     "dsa",
	"js":                             "javascript",
	"ml":                             "machine learning",
	"dl":                             "deep learning",
}

var displayOverrides = map[string]string{
	"c++":        "C++",
	"oops":       "OOPS",
	"dsa":        "DSA",
	"sql":        "SQL",
	"html":       "HTML",
	"css":        "CSS",
	"javascript": "JavaScript",
}

var effortHours = map[string]float64{
	"python":           35,
	"c++":              40,
	"java":             40,
	"oops":             20,
	"dsa":              60,
	"sql":              25,
	"javascript":       35,
	"html":             14,
	"css":              14,
	"machine learning": 70,
	"deep learning":    80,
	"linux":            20,
	"git":              10,
}

// Predefined lists the skills offered during onboarding.
var Predefined = []string{
	"Python", "C++", "Java", "OOPS", "DSA", "SQL", "JavaScript",
	"HTML", "CSS", "Machine Learning", "Deep Learning", "Git", "Linux",
}

// Normalize folds a free-text skill name into its canonical key.
// The empty string means "no skill" and must be filtered by callers.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	cleaned := nonSkillChars.ReplaceAllString(lowered, " ")
	key := strings.Join(strings.Fields(cleaned), " ")
	if alias, ok := aliases[key]; ok {
		return alias
	}
	return key
}

// Display renders a key for humans.
func Display(key string) string {
	key = Normalize(key)
	if label, ok := displayOverrides[key]; ok {
		return label
	}
	return titleCase(key)
}

func titleCase(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	prevLetter := false
	for _, r := range value {
		if prevLetter {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}

// Deduplicate keeps the first spelling of every distinct key and drops blanks.
func Deduplicate(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		key := Normalize(name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(name))
	}
	return out
}

// Keys returns the distinct non-empty keys of names in first-seen order.
func Keys(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		key := Normalize(name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// EstimateHours returns the study effort associated with a skill.
func EstimateHours(name string) float64 {
	if hours, ok := effortHours[Normalize(name)]; ok {
		return hours
	}
	return DefaultEffortHours
}

// Minutes converts effort hours into whole minutes.
func Minutes(hours float64) int {
	if hours <= 0 {
		return 0
	}
	return int(math.Round(hours * 60))
}

// ParseList splits a raw skills field. JSON (or single-quoted) list literals
// are decoded, anything else is split on commas, semicolons and newlines.
func ParseList(raw string) []string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
		if items, ok := decodeList(text); ok {
			return items
		}
		if items, ok := decodeList(strings.ReplaceAll(text, "'", `"`)); ok {
			return items
		}
	}

	replacer := strings.NewReplacer(";", ",", "\n", ",")
	parts := strings.Split(replacer.Replace(text), ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func decodeList(text string) ([]string, bool) {
	var values []interface{}
	if err := json.Unmarshal([]byte(text), &values); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		var item string
		switch v := value.(type) {
		case string:
			item = v
		case nil:
			continue
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				continue
			}
			item = string(encoded)
		}
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, true
}
