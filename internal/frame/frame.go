// Package frame applies per-tick simulation transforms to bound instances,
// moves the camera and hands the scene to the renderer.
package frame

import (
	"fmt"

	"github.com/rs/zerolog"

	"specter/engine/quarkgl"
	"specter/internal/appearance"
	"specter/internal/binding"
)

// Entry is one entity's transform in a tick. Translation is on the
// simulation's ground plane; Heading, when set, is a rotation about the up axis
// in radians.
type Entry[K comparable] struct {
	Entity      K
	Translation quarkgl.Vec2
	Heading     *float32
}

// Tick is one simulation snapshot. Subject is the followed entity's position,
// if the simulation designates one.
type Tick[K comparable] struct {
	Entries []Entry[K]
	Subject *quarkgl.Vec2
}

// Bindings is the read side of the binding manager.
type Bindings[K comparable] interface {
	Instance(e K) (*quarkgl.Node, bool)
	State(e K) binding.State
	Stalled(e K) bool
}

// Drawer renders one frame of the scene from its camera.
type Drawer interface {
	Draw(s *quarkgl.Scene)
}

// CameraMode selects how the camera moves.
type CameraMode uint8

const (
	// Static keeps the pose set at startup.
	Static CameraMode = iota
	// Follow places the camera at the subject plus Offset, looking at Target.
	Follow
)

func (m CameraMode) String() string {
	if m == Follow {
		return "follow"
	}
	return "static"
}

// Rig configures the camera.
type Rig struct {
	Mode     CameraMode
	Position quarkgl.Vec3
	Offset   quarkgl.Vec3
	Target   quarkgl.Vec3

	Projection quarkgl.CameraType
	// OrthoSize applies to CameraOrtho; zero keeps the scene camera's value.
	OrthoSize quarkgl.Scalar
}

// RigFromManifest converts the manifest's camera section.
func RigFromManifest(c appearance.CameraConfig) Rig {
	r := Rig{
		Position: vec3(c.Position),
		Offset:   vec3(c.Offset),
		Target:   vec3(c.Target),
	}
	if c.Follow {
		r.Mode = Follow
	}
	r.Projection, _ = quarkgl.ParseCameraType(c.Projection)
	r.OrthoSize = c.OrthoSize
	return r
}

func vec3(v [3]float32) quarkgl.Vec3 { return quarkgl.V3(v[0], v[1], v[2]) }

// Stats reports what the last Render did.
type Stats struct {
	Synced  int
	Skipped int
}

// Synchronizer moves bound instances to their simulated positions each tick.
type Synchronizer[K comparable] struct {
	bindings Bindings[K]
	scene    *quarkgl.Scene
	drawer   Drawer
	rig      Rig
	log      zerolog.Logger

	last Stats
}

// NewSynchronizer poses the scene camera according to rig and returns a
// synchronizer drawing through d. A nil d disables drawing.
func NewSynchronizer[K comparable](b Bindings[K], s *quarkgl.Scene, d Drawer, rig Rig, log zerolog.Logger) *Synchronizer[K] {
	s.Camera.Type = rig.Projection
	if rig.OrthoSize > 0 {
		s.Camera.OrthoSize = rig.OrthoSize
	}
	s.Camera.Position = rig.Position
	s.Camera.LookAt(rig.Target)
	return &Synchronizer[K]{bindings: b, scene: s, drawer: d, rig: rig, log: log}
}

// Render syncs every entry of t, updates the camera and draws one frame.
// Entries whose entity has no bound instance are skipped.
func (s *Synchronizer[K]) Render(t Tick[K]) Stats {
	var st Stats
	for _, e := range t.Entries {
		inst, ok := s.bindings.Instance(e.Entity)
		if !ok {
			st.Skipped++
			// Info so unresolved references show at the default level; limbo
			// clears in the binding manager stay at Warn.
			if ev := s.log.Info(); ev.Enabled() {
				ev.Str("entity", fmt.Sprint(e.Entity)).
					Stringer("state", s.bindings.State(e.Entity)).
					Bool("stalled", s.bindings.Stalled(e.Entity)).
					Msg("no bound instance, transform skipped")
			}
			continue
		}
		inst.Position = quarkgl.Ground(e.Translation)
		if e.Heading != nil {
			inst.Heading = *e.Heading
		}
		st.Synced++
	}
	if s.rig.Mode == Follow && t.Subject != nil {
		s.scene.Camera.Position = quarkgl.Ground(*t.Subject).Add(s.rig.Offset)
		s.scene.Camera.LookAt(s.rig.Target)
	}
	if s.drawer != nil {
		s.drawer.Draw(s.scene)
	}
	s.last = st
	return st
}

// Last returns the stats of the most recent Render.
func (s *Synchronizer[K]) Last() Stats { return s.last }

// Rig returns the camera configuration.
func (s *Synchronizer[K]) Rig() Rig { return s.rig }
