package normalizer

import (
	"encoding/json"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/arvandy/skillpipe/pkg/config"
	"go.uber.org/zap"
)

// TextNormalizer applies the configured normalization steps in a fixed
// order: lowercase, punctuation removal, whitespace collapse, synonym
// substitution, acronym expansion. Synonym and acronym maps are expected to
// be pre-lowercased when lowercasing is enabled.
type TextNormalizer struct {
	config   config.Normalization
	synonyms []substitution
	acronyms []substitution
}

// substitution is one compiled phrase replacement. Patterns are anchored on
// word boundaries so "go" never rewrites the middle of "django".
type substitution struct {
	pattern     *regexp.Regexp
	replacement string
}

var punctuationRe = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// New builds a normalizer from the config and the synonym/acronym map files.
// A missing or unreadable map file is not an error: the corresponding step is
// skipped and a warning is logged.
func New(cfg config.Normalization, synonymFile, acronymFile string, log *zap.Logger) *TextNormalizer {
	n := &TextNormalizer{config: cfg}

	if cfg.ApplySynonyms {
		n.synonyms = compileSubstitutions(loadMap(synonymFile, "synonym", log), false)
	}
	if cfg.ApplyAcronyms {
		n.acronyms = compileSubstitutions(loadMap(acronymFile, "acronym", log), true)
	}

	return n
}

// Normalize runs the enabled steps on raw input. The result is stable:
// normalizing an already-normalized string returns it unchanged.
func (n *TextNormalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	if n.config.Lowercase {
		text = strings.ToLower(text)
	}

	if n.config.RemovePunctuation {
		text = punctuationRe.ReplaceAllString(text, "")
	}

	if n.config.StripWhitespace {
		text = strings.Join(strings.Fields(text), " ")
	}

	for _, sub := range n.synonyms {
		text = sub.pattern.ReplaceAllString(text, sub.replacement)
	}

	for _, sub := range n.acronyms {
		text = sub.pattern.ReplaceAllString(text, sub.replacement)
	}

	return text
}

// NormalizeAll maps Normalize over a skill list, preserving order.
func (n *TextNormalizer) NormalizeAll(skills []string) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = n.Normalize(s)
	}
	return out
}

// SplitAlternatives splits compound phrasing like "Django or Flask" into its
// alternates when enabled, otherwise returns the skill as a single token.
func (n *TextNormalizer) SplitAlternatives(skill string) []string {
	if !n.config.SplitAlternatives {
		return []string{skill}
	}

	parts := strings.Split(skill, " or ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{skill}
	}
	return out
}

func loadMap(path, kind string, log *zap.Logger) map[string]string {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if log != nil {
			log.Warn("skipping "+kind+" substitution, map file not readable",
				zap.String("path", path), zap.Error(err))
		}
		return nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		if log != nil {
			log.Warn("skipping "+kind+" substitution, map file not valid JSON",
				zap.String("path", path), zap.Error(err))
		}
		return nil
	}

	return m
}

// compileSubstitutions turns a raw->canonical map into ordered replacements.
// Longest raw phrase first, so "amazon web services console" wins over
// "amazon web services". Acronym patterns match case-insensitively.
func compileSubstitutions(m map[string]string, caseInsensitive bool) []substitution {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	subs := make([]substitution, 0, len(keys))
	for _, k := range keys {
		expr := `\b` + regexp.QuoteMeta(k) + `\b`
		if caseInsensitive {
			expr = `(?i)` + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			continue
		}
		subs = append(subs, substitution{pattern: re, replacement: m[k]})
	}

	return subs
}
