package pattern

import (
	"regexp"
	"strings"

	"github.com/harrison/scour/internal/models"
)

type compiledPattern struct {
	spec    models.PatternSpec
	re      *regexp.Regexp // nil for case-sensitive literals
	literal string
}

// find returns the byte span of the first occurrence in line.
func (p *compiledPattern) find(line string) (models.Span, bool) {
	if p.re == nil {
		i := strings.Index(line, p.literal)
		if i < 0 {
			return models.Span{}, false
		}
		return models.Span{Start: i, End: i + len(p.literal)}, true
	}
	loc := p.re.FindStringIndex(line)
	if loc == nil {
		return models.Span{}, false
	}
	return models.Span{Start: loc[0], End: loc[1]}, true
}

// Matcher tests decoded lines against an ordered, immutable set of patterns.
// It is safe for concurrent use by multiple workers.
type Matcher struct {
	patterns []compiledPattern
}

// Specs returns the compiled pattern descriptions in request order.
func (m *Matcher) Specs() []models.PatternSpec {
	specs := make([]models.PatternSpec, len(m.patterns))
	for i := range m.patterns {
		specs[i] = m.patterns[i].spec
	}
	return specs
}

// Len returns the number of patterns.
func (m *Matcher) Len() int {
	return len(m.patterns)
}

// MatchLine appends one MatchRecord per matching pattern to dst, in pattern order.
func (m *Matcher) MatchLine(path string, lineNumber int, line string, dst []models.MatchRecord) []models.MatchRecord {
	for i := range m.patterns {
		p := &m.patterns[i]
		span, ok := p.find(line)
		if !ok {
			continue
		}
		dst = append(dst, models.MatchRecord{
			Path:        path,
			LineNumber:  lineNumber,
			PatternText: p.spec.Text,
			LineContent: line,
			Span:        span,
		})
	}
	return dst
}
