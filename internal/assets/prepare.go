package assets

import (
	"math"

	"specter/engine/quarkgl"
)

// Studio light defaults applied to every light embedded in a loaded model.
// Exported models carry physically based intensities that blow out the
// dungeon's dim ambient, so they are scaled down and given a short falloff.
const (
	LightIntensityDivisor = 225
	LightDistance         = 8
	LightAngle            = -math.Pi
	LightPenumbra         = 0.3
	LightDecay            = 0.45
)

// Prepare turns a freshly decoded model into a template. Every node casts and
// receives shadows; embedded lights get the studio falloff. A root with a single
// child is unwrapped so the template is the child itself. The template always
// sits at its local origin.
func Prepare(root *quarkgl.Node) *quarkgl.Node {
	if root == nil {
		return nil
	}
	root.Traverse(func(n *quarkgl.Node) {
		if l := n.Light; l != nil {
			l.Intensity /= LightIntensityDivisor
			l.Distance = LightDistance
			l.Angle = LightAngle
			l.Penumbra = LightPenumbra
			l.Decay = LightDecay
		}
		n.CastShadow = true
		n.ReceiveShadow = true
	})

	tmpl := root
	if len(root.Children) == 1 {
		tmpl = root.Children[0]
		tmpl.Detach()
	}
	tmpl.Position = quarkgl.Vec3{}
	return tmpl
}
