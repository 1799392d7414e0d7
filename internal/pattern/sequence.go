package pattern

import "github.com/spanezz/stimpattern/internal/excitement"

// Sequence orders Patterns into one stream. NextPattern returns
// ok=false when the sequence has legitimately terminated; a sequence
// may also be infinite and never return false.
type Sequence interface {
	NextPattern() (Pattern, bool)
}

// Reactor is the capability a Sequence may implement to react to
// classifier output. It is invoked synchronously once per new
// snapshot, before the next buffer is generated, and must not block;
// requesting an override is its only permitted side effect.
type Reactor interface {
	OnExcitement(snap excitement.Snapshot)
}

// Overrider accepts override requests. A Channel satisfies this.
type Overrider interface {
	RequestOverride(p Pattern)
}

// OverriderSetter is the capability of sequences that aim their
// overrides at the channel they end up running on. The player wires
// the channel in when the sequence is started.
type OverriderSetter interface {
	SetOverrider(o Overrider)
}

// FuncSequence adapts a function to the Sequence interface.
type FuncSequence func() (Pattern, bool)

func (f FuncSequence) NextPattern() (Pattern, bool) { return f() }

// Playlist is a finite Sequence over a fixed list of patterns.
type Playlist struct {
	patterns []Pattern
	next     int
}

func NewPlaylist(patterns ...Pattern) *Playlist {
	return &Playlist{patterns: patterns}
}

func (p *Playlist) NextPattern() (Pattern, bool) {
	if p.next >= len(p.patterns) {
		return nil, false
	}
	pat := p.patterns[p.next]
	p.next++
	return pat, true
}

// Repeat is an infinite Sequence that constructs a fresh Pattern per
// iteration. Patterns are single-use, so the factory runs every time.
type Repeat struct {
	Make func() Pattern
}

func (r Repeat) NextPattern() (Pattern, bool) { return r.Make(), true }
