package quarkgl

// LightMode defines the scene-wide lighting options.
type LightMode uint8

const (
	LightOff LightMode = iota
	LightAmbientDirectional
)

// Light is the scene-wide ambient + directional setup.
type Light struct {
	Mode      LightMode
	Ambient   Scalar // 0..1
	Color     Color  // ambient tint; zero means white
	Dir       Vec3   // direction *towards* the scene
	DirAmount Scalar // 0..1
}

// PointLightKind distinguishes omni lights from cones.
type PointLightKind uint8

const (
	KindPoint PointLightKind = iota
	KindSpot
)

func (k PointLightKind) String() string {
	switch k {
	case KindSpot:
		return "spot"
	default:
		return "point"
	}
}

// PointLight is a light embedded in a model. Its position is the owning node's
// world position; spot lights shine along the node's local -Y axis.
type PointLight struct {
	Kind      PointLightKind
	Color     Color
	Intensity Scalar

	// Distance is the cutoff range; zero means unbounded.
	Distance Scalar
	// Angle is the spot cone half-angle in radians.
	Angle    Scalar
	Penumbra Scalar // 0..1
	Decay    Scalar
}

// attenuate returns the light's contribution factor at distance d.
func (l *PointLight) attenuate(d Scalar) Scalar {
	if l.Distance > 0 && d >= l.Distance {
		return 0
	}
	f := l.Intensity
	if l.Decay > 0 && d > 0 {
		f /= pow(d, l.Decay)
	}
	if l.Distance > 0 {
		// Smooth window so the light fades to zero at the cutoff.
		r := d / l.Distance
		w := Clamp01(1 - r*r*r*r)
		f *= w * w
	}
	return f
}
