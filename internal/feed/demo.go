package feed

import (
	"fmt"
	"math"

	"specter/internal/appearance"
)

// Demo builds a recording of a small dungeon room: a floor of stone tiles, two
// lanterns, walls along the back edge, and a skeleton walking a circle that is
// also the camera subject. It lasts ticks ticks and ends by clearing everything.
func Demo(ticks int) *Recording {
	rec := &Recording{}
	var statics []TickEntry
	add := func(id, name string, x, y float32) {
		rec.Messages = append(rec.Messages, SetAppearanceName(id, name))
		statics = append(statics, TickEntry{Entity: id, Translation: [2]float32{x, y}})
	}

	floor := appearance.DefaultNames[:4]
	for y := -2; y <= 2; y++ {
		for x := -2; x <= 2; x++ {
			name := floor[(x+2+y+2)%len(floor)]
			add(fmt.Sprintf("tile-%d-%d", x, y), name, float32(x)*2, float32(y)*2)
		}
	}
	for x := -2; x <= 2; x++ {
		add(fmt.Sprintf("wall-%d", x), "StoneWall", float32(x)*2, 5)
	}
	add("lantern-w", "Lantern", -3, 3)
	add("lantern-e", "Lantern", 3, 3)
	rec.Messages = append(rec.Messages, SetAppearanceName("walker", "Skeleton"))

	for i := 0; i < ticks; i++ {
		a := float64(i) * 2 * math.Pi / 120
		pos := [2]float32{float32(3 * math.Cos(a)), float32(3 * math.Sin(a))}
		heading := float32(a + math.Pi/2)
		entries := append([]TickEntry(nil), statics...)
		entries = append(entries, TickEntry{Entity: "walker", Translation: pos, Heading: &heading})
		subject := pos
		rec.Messages = append(rec.Messages, Message{
			Type:    TypeTick,
			Seq:     uint64(i + 1),
			Entries: entries,
			Subject: &subject,
		})
	}

	for _, e := range statics {
		rec.Messages = append(rec.Messages, Clear(e.Entity))
	}
	rec.Messages = append(rec.Messages, Clear("walker"))
	return rec
}
