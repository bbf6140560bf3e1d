package feed

import (
	"github.com/rs/zerolog"

	"specter/internal/appearance"
	"specter/internal/frame"
)

// Target receives appearance events. *binding.Manager[string] satisfies it.
type Target interface {
	SetAppearance(entity string, i appearance.Index)
	Clear(entity string)
}

// Applier dispatches drained feed messages to a Target.
type Applier struct {
	record *appearance.Record
	target Target
	log    zerolog.Logger
}

// NewApplier resolves appearance names against record.
func NewApplier(record *appearance.Record, target Target, log zerolog.Logger) *Applier {
	return &Applier{record: record, target: target, log: log}
}

// Apply dispatches appearance and clear messages in arrival order and returns
// the last tick among msgs. ok is false when msgs held no tick.
func (a *Applier) Apply(msgs []Message) (tick frame.Tick[string], seq uint64, ok bool) {
	for _, m := range msgs {
		switch m.Type {
		case TypeAppearance:
			i, err := a.index(m)
			if err != nil {
				a.log.Warn().Err(err).Str("entity", m.Entity).Msg("appearance message dropped")
				continue
			}
			a.target.SetAppearance(m.Entity, i)
		case TypeClear:
			a.target.Clear(m.Entity)
		case TypeTick:
			tick, seq, ok = m.Tick(), m.Seq, true
		}
	}
	return tick, seq, ok
}

func (a *Applier) index(m Message) (appearance.Index, error) {
	if m.Appearance != nil {
		// Indices outside the manifest are kept: the entity waits as pending.
		return appearance.Index(*m.Appearance), nil
	}
	return a.record.IndexOf(m.AppearanceName)
}
