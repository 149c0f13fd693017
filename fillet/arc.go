package fillet

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/paulmach/orb"

	"github.com/rogelgarcia/bus-simulator-sub007/geom"
)

// maxAngleStep bounds the angular spacing of arc samples so that chord
// directions stay within the G1 tolerance of the true tangents.
const maxAngleStep = 0.2

// sampleCorner returns the interior samples of a corner curve, excluding the
// tangent endpoints. Corners shaped with a tangent factor of 1 are exact
// circular arcs; asymmetric corners are sampled as a quadratic blend through
// the original vertex, which keeps both endpoint tangents on the segment
// lines.
func sampleCorner(vertex orb.Point, c Corner, chordLength float64) []orb.Point {
	if geom.Equal(c.Center, vertex) {
		return sampleBlend(c.InTangent, vertex, c.OutTangent, chordLength)
	}
	return sampleArc(c, chordLength)
}

func sampleArc(c Corner, chordLength float64) []orb.Point {
	start := geom.Sub(c.InTangent, c.Center)
	end := geom.Sub(c.OutTangent, c.Center)
	sweep := s1.Angle(math.Atan2(math.Abs(geom.Cross(start, end)), geom.Dot(start, end)))
	steps := arcSteps(sweep, c.RadiusUsed, chordLength)
	sign := -1.0
	if c.CCW {
		sign = 1.0
	}
	samples := make([]orb.Point, 0, steps-1)
	for s := 1; s < steps; s++ {
		theta := sign * sweep.Radians() * float64(s) / float64(steps)
		samples = append(samples, geom.RotateAround(c.InTangent, c.Center, theta))
	}
	return samples
}

func arcSteps(sweep s1.Angle, radius, chordLength float64) int {
	byAngle := int(math.Ceil(sweep.Radians() / maxAngleStep))
	byChord := int(math.Ceil(sweep.Radians() * radius / chordLength))
	steps := byAngle
	if byChord > steps {
		steps = byChord
	}
	if steps < 2 {
		steps = 2
	}
	return steps
}

func sampleBlend(a, control, b orb.Point, chordLength float64) []orb.Point {
	approx := geom.Dist(a, control) + geom.Dist(control, b)
	steps := int(math.Ceil(approx / chordLength))
	if steps < 4 {
		steps = 4
	}
	samples := make([]orb.Point, 0, steps-1)
	for s := 1; s < steps; s++ {
		t := float64(s) / float64(steps)
		omt := 1 - t
		p := geom.Add(
			geom.Add(geom.Scale(a, omt*omt), geom.Scale(control, 2*t*omt)),
			geom.Scale(b, t*t),
		)
		samples = append(samples, p)
	}
	return samples
}
