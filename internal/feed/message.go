// Package feed carries simulation events from a server to the viewer:
// appearance assignments, clears, and per-tick transform snapshots.
package feed

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"specter/engine/quarkgl"
	"specter/internal/frame"
)

// ErrUnknownMessage is returned for messages whose type the viewer does not handle.
var ErrUnknownMessage = eris.New("unknown feed message")

// Type tags a feed message.
type Type string

const (
	TypeAppearance Type = "appearance"
	TypeClear      Type = "clear"
	TypeTick       Type = "tick"
)

// Message is the wire form of every feed event. Which fields are meaningful
// depends on Type.
type Message struct {
	Type Type `json:"type"`

	// appearance, clear
	Entity string `json:"entity,omitempty"`
	// appearance: either an index or a name from the manifest.
	Appearance     *int   `json:"appearance,omitempty"`
	AppearanceName string `json:"appearance_name,omitempty"`

	// tick
	Seq     uint64      `json:"seq,omitempty"`
	Entries []TickEntry `json:"entries,omitempty"`
	Subject *[2]float32 `json:"subject,omitempty"`
}

// TickEntry is one entity's transform on the wire.
type TickEntry struct {
	Entity      string     `json:"entity"`
	Translation [2]float32 `json:"translation"`
	Heading     *float32   `json:"heading,omitempty"`
}

// SetAppearance builds an appearance message by index.
func SetAppearance(entity string, index int) Message {
	return Message{Type: TypeAppearance, Entity: entity, Appearance: &index}
}

// SetAppearanceName builds an appearance message by manifest name.
func SetAppearanceName(entity, name string) Message {
	return Message{Type: TypeAppearance, Entity: entity, AppearanceName: name}
}

// Clear builds a clear message.
func Clear(entity string) Message {
	return Message{Type: TypeClear, Entity: entity}
}

// Decode parses and validates one message.
func Decode(bz []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(bz, &m); err != nil {
		return m, eris.Wrap(err, "decode feed message")
	}
	switch m.Type {
	case TypeAppearance:
		if m.Entity == "" {
			return m, eris.New("appearance message without entity")
		}
		if m.Appearance == nil && m.AppearanceName == "" {
			return m, eris.Errorf("appearance message for %q names no appearance", m.Entity)
		}
	case TypeClear:
		if m.Entity == "" {
			return m, eris.New("clear message without entity")
		}
	case TypeTick:
	default:
		return m, eris.Wrapf(ErrUnknownMessage, "type %q", m.Type)
	}
	return m, nil
}

// Encode serializes one message.
func Encode(m Message) ([]byte, error) {
	bz, err := json.Marshal(m)
	if err != nil {
		return nil, eris.Wrap(err, "encode feed message")
	}
	return bz, nil
}

// Tick converts a tick message into a frame tick.
func (m Message) Tick() frame.Tick[string] {
	t := frame.Tick[string]{Entries: make([]frame.Entry[string], 0, len(m.Entries))}
	for _, e := range m.Entries {
		t.Entries = append(t.Entries, frame.Entry[string]{
			Entity:      e.Entity,
			Translation: quarkgl.V2(e.Translation[0], e.Translation[1]),
			Heading:     e.Heading,
		})
	}
	if m.Subject != nil {
		s := quarkgl.V2(m.Subject[0], m.Subject[1])
		t.Subject = &s
	}
	return t
}
