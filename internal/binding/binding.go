// Package binding tracks which visual instance, if any, represents each
// simulation entity.
//
// Every entity is in exactly one of three states: unbound (no record), pending
// (an appearance was requested whose template has not loaded yet) or bound (a
// cloned instance lives in the scene). The Manager is driven from the frame
// goroutine only: appearance assignments, clears and load notifications all
// arrive there, so each transition is applied in full before control returns.
package binding

import (
	"fmt"

	"github.com/rs/zerolog"

	"specter/engine/quarkgl"
	"specter/internal/appearance"
)

// State is the binding state of one entity.
type State uint8

const (
	Unbound State = iota
	Pending
	Bound
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Bound:
		return "bound"
	default:
		return "unbound"
	}
}

// Templates looks up loaded templates without blocking.
type Templates interface {
	Get(i appearance.Index) (*quarkgl.Node, bool)
}

// Scene receives instance insertions and removals.
type Scene interface {
	Add(n *quarkgl.Node)
	Remove(n *quarkgl.Node) bool
}

type pending struct {
	index   appearance.Index
	stalled bool
}

type bound struct {
	index    appearance.Index
	instance *quarkgl.Node
}

// Counts summarizes the manager.
type Counts struct {
	Pending int
	Bound   int
	Stalled int
}

// Manager maps entities of key type K to pending or bound records.
type Manager[K comparable] struct {
	templates Templates
	scene     Scene
	log       zerolog.Logger

	pending map[K]pending
	bound   map[K]bound
	failed  map[appearance.Index]error
}

// NewManager returns an empty manager.
func NewManager[K comparable](templates Templates, scene Scene, log zerolog.Logger) *Manager[K] {
	return &Manager[K]{
		templates: templates,
		scene:     scene,
		log:       log,
		pending:   make(map[K]pending),
		bound:     make(map[K]bound),
		failed:    make(map[appearance.Index]error),
	}
}

// SetAppearance assigns appearance i to entity e. When the template is loaded
// the entity is bound to a fresh clone at once; otherwise it waits as pending.
// Any previous record of e is replaced, and a previous instance leaves the scene.
func (m *Manager[K]) SetAppearance(e K, i appearance.Index) {
	tmpl, ok := m.templates.Get(i)
	m.unbind(e)
	if ok {
		delete(m.pending, e)
		m.bind(e, i, tmpl)
		return
	}
	p := pending{index: i}
	if err, failed := m.failed[i]; failed {
		p.stalled = true
		m.log.Warn().Str("entity", fmt.Sprint(e)).Int("index", int(i)).AnErr("cause", err).
			Msg("appearance failed to load, entity will stay pending")
	}
	m.pending[e] = p
}

// Clear forgets entity e, removing its instance from the scene if it has one.
// Clearing an entity that is neither bound nor pending is logged and ignored.
func (m *Manager[K]) Clear(e K) {
	if m.unbind(e) {
		return
	}
	if _, ok := m.pending[e]; ok {
		delete(m.pending, e)
		return
	}
	m.log.Warn().Str("entity", fmt.Sprint(e)).Msg("limbo: cleared entity was neither bound nor pending")
}

// Resolve binds every entity waiting on appearance i. It is called when the
// template for i becomes available.
func (m *Manager[K]) Resolve(i appearance.Index) {
	tmpl, ok := m.templates.Get(i)
	if !ok {
		m.log.Error().Int("index", int(i)).Msg("resolve called for an appearance that is not loaded")
		return
	}
	delete(m.failed, i)
	n := 0
	for e, p := range m.pending {
		if p.index != i {
			continue
		}
		m.bind(e, i, tmpl)
		delete(m.pending, e)
		n++
	}
	if n > 0 {
		m.log.Debug().Int("index", int(i)).Int("resolved", n).Msg("pending entities bound")
	}
}

// Fail records that appearance i will never load. Entities waiting on it stay
// pending but are marked stalled so they can be told apart from loads that are
// still in flight.
func (m *Manager[K]) Fail(i appearance.Index, err error) {
	m.failed[i] = err
	for e, p := range m.pending {
		if p.index != i || p.stalled {
			continue
		}
		p.stalled = true
		m.pending[e] = p
		m.log.Warn().Str("entity", fmt.Sprint(e)).Int("index", int(i)).AnErr("cause", err).
			Msg("entity stalled on failed appearance")
	}
}

func (m *Manager[K]) bind(e K, i appearance.Index, tmpl *quarkgl.Node) {
	inst := tmpl.Clone()
	inst.Position = quarkgl.Vec3{}
	m.scene.Add(inst)
	m.bound[e] = bound{index: i, instance: inst}
}

// unbind removes e's instance, if any, and reports whether there was one.
func (m *Manager[K]) unbind(e K) bool {
	b, ok := m.bound[e]
	if !ok {
		return false
	}
	m.scene.Remove(b.instance)
	delete(m.bound, e)
	return true
}

// State reports the binding state of e.
func (m *Manager[K]) State(e K) State {
	if _, ok := m.bound[e]; ok {
		return Bound
	}
	if _, ok := m.pending[e]; ok {
		return Pending
	}
	return Unbound
}

// Instance returns e's bound instance.
func (m *Manager[K]) Instance(e K) (*quarkgl.Node, bool) {
	b, ok := m.bound[e]
	if !ok {
		return nil, false
	}
	return b.instance, true
}

// Appearance returns the appearance e is bound to or waiting for.
func (m *Manager[K]) Appearance(e K) (appearance.Index, bool) {
	if b, ok := m.bound[e]; ok {
		return b.index, true
	}
	if p, ok := m.pending[e]; ok {
		return p.index, true
	}
	return -1, false
}

// Stalled reports whether e is pending on an appearance that failed to load.
func (m *Manager[K]) Stalled(e K) bool {
	p, ok := m.pending[e]
	return ok && p.stalled
}

// Counts returns the number of pending, bound and stalled entities.
func (m *Manager[K]) Counts() Counts {
	c := Counts{Pending: len(m.pending), Bound: len(m.bound)}
	for _, p := range m.pending {
		if p.stalled {
			c.Stalled++
		}
	}
	return c
}

// Each calls fn for every bound entity. Order is unspecified.
func (m *Manager[K]) Each(fn func(e K, inst *quarkgl.Node)) {
	for e, b := range m.bound {
		fn(e, b.instance)
	}
}
