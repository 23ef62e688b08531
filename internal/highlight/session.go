package highlight

import (
	"fmt"

	"provtrack/internal/artifact"
	"provtrack/internal/provenance"
	"provtrack/internal/resolver"

	"github.com/patrickmn/go-cache"
)

// Surface is whatever renders the panels: a browser page, a terminal, a test
// recorder.
type Surface interface {
	ClearHighlights()
	Highlight(kind artifact.Kind, lines []int)
	ScrollTo(kind artifact.Kind, line int)
}

// Session binds one provenance context to one surface. It lives as long as the
// report stays open; a reload starts a new session.
type Session struct {
	ctx     *provenance.Context
	surface Surface
	results *cache.Cache
}

func NewSession(ctx *provenance.Context, surface Surface) *Session {
	return &Session{
		ctx:     ctx,
		surface: surface,
		results: cache.New(cache.NoExpiration, 0),
	}
}

// Select handles one pointer event on line of the source artifact and returns
// what was highlighted.
func (s *Session) Select(source artifact.Kind, line int) resolver.HighlightResult {
	res := s.lookup(source, line)

	s.surface.ClearHighlights()
	s.surface.Highlight(source, []int{line})
	for _, kind := range artifact.Kinds {
		if lines := res[kind]; len(lines) > 0 {
			s.surface.Highlight(kind, lines)
		}
	}
	if kind, target, ok := ScrollTarget(res); ok {
		s.surface.ScrollTo(kind, target)
	}
	return res
}

// lookup returns a private copy of the memoised result so that callers never
// share state with later queries.
func (s *Session) lookup(source artifact.Kind, line int) resolver.HighlightResult {
	key := fmt.Sprintf("%s:%d", source, line)
	if v, ok := s.results.Get(key); ok {
		return v.(resolver.HighlightResult).Clone()
	}
	res := s.ctx.Resolve(source, line)
	s.results.Set(key, res.Clone(), cache.NoExpiration)
	return res
}

// ScrollTarget picks the artifact to bring into view: the one with the most
// corresponding lines, first in display order on a tie, scrolled to its middle
// entry. Only target artifacts appear in a result, so the queried one is never
// chosen.
func ScrollTarget(res resolver.HighlightResult) (artifact.Kind, int, bool) {
	var (
		best  artifact.Kind
		lines []int
	)
	for _, kind := range artifact.Kinds {
		if l := res[kind]; len(l) > len(lines) {
			best, lines = kind, l
		}
	}
	if len(lines) == 0 {
		return "", 0, false
	}
	return best, lines[len(lines)/2], true
}
