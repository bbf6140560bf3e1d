// Profiling:
// go build ./cmd/profile/binding
// go tool pprof -http=":8000" -nodefraction=0.001 ./binding mem.pprof

package main

import (
	"flag"
	"fmt"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"

	"specter/engine/quarkgl"
	"specter/internal/appearance"
	"specter/internal/binding"
	"specter/internal/frame"
)

type templates map[appearance.Index]*quarkgl.Node

func (t templates) Get(i appearance.Index) (*quarkgl.Node, bool) {
	n, ok := t[i]
	return n, ok
}

func main() {
	mode := flag.String("mode", "mem", "mem|cpu.")
	rounds := flag.Int("rounds", 20, "Rounds.")
	ticks := flag.Int("ticks", 500, "Ticks per round.")
	entities := flag.Int("entities", 1000, "Entities per round.")
	flag.Parse()

	opt := profile.MemProfileAllocs
	if *mode == "cpu" {
		opt = profile.CPUProfile
	}
	p := profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook)
	run(*rounds, *ticks, *entities)
	p.Stop()
}

// run churns entities through every binding state while syncing ticks.
func run(rounds, ticks, numEntities int) {
	const kinds = 7
	tmpl := templates{}
	for r := 0; r < rounds; r++ {
		scene := quarkgl.NewScene()
		for k := range tmpl {
			delete(tmpl, k)
		}
		m := binding.NewManager[int](tmpl, scene, zerolog.Nop())
		s := frame.NewSynchronizer[int](m, scene, nil, frame.Rig{}, zerolog.Nop())

		for e := 0; e < numEntities; e++ {
			m.SetAppearance(e, appearance.Index(e%kinds))
		}
		for i := 0; i < kinds; i++ {
			tmpl[appearance.Index(i)] = quarkgl.NewMeshNode(fmt.Sprint(i), quarkgl.Box(quarkgl.V3(1, 1, 1)), quarkgl.Material{})
			m.Resolve(appearance.Index(i))
		}

		tick := frame.Tick[int]{Entries: make([]frame.Entry[int], numEntities)}
		for t := 0; t < ticks; t++ {
			for e := 0; e < numEntities; e++ {
				tick.Entries[e] = frame.Entry[int]{Entity: e, Translation: quarkgl.V2(float32(t), float32(e))}
			}
			s.Render(tick)
			// Re-skin a tenth of the entities and clear another tenth each tick.
			for e := t % 10; e < numEntities; e += 10 {
				m.SetAppearance(e, appearance.Index((e+t)%kinds))
			}
			for e := (t + 5) % 10; e < numEntities; e += 10 {
				m.Clear(e)
				m.SetAppearance(e, appearance.Index(e%kinds))
			}
		}
	}
}
