package geom

import (
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestEpsilonPredicates(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	if !Is0(0.000000008) {
		t.Errorf("expected tiny value to be zero, is not")
	}
	if Is0(0.001) {
		t.Errorf("expected 0.001 not to be zero")
	}
	if Zap(1e-9) != 0 {
		t.Errorf("expected Zap to collapse 1e-9 to 0")
	}
}

func TestVectorBasics(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	v := Pt(3, 4)
	if Length(v) != 5 {
		t.Errorf("expected |(3,4)| = 5, got %g", Length(v))
	}
	if !Equal(Add(v, Pt(-3, -4)), Pt(0, 0)) {
		t.Errorf("expected v + (-v) to be origin")
	}
	if !Is0(Dot(Pt(1, 0), Pt(0, 1))) {
		t.Errorf("expected orthogonal dot product to be 0")
	}
	if Cross(Pt(1, 0), Pt(0, 1)) != 1 {
		t.Errorf("expected cross of x,z basis to be 1")
	}
}

func TestPerpConvention(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// Traveling along +X, right points toward -Z.
	if !Equal(PerpRight(Pt(1, 0)), Pt(0, -1)) {
		t.Errorf("PerpRight(+X) = %v, want (0,-1)", PerpRight(Pt(1, 0)))
	}
	if !Equal(PerpLeft(Pt(1, 0)), Pt(0, 1)) {
		t.Errorf("PerpLeft(+X) = %v, want (0,1)", PerpLeft(Pt(1, 0)))
	}
}

func TestRotateAround(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	p := RotateAround(Pt(2, 1), Pt(1, 1), math.Pi/2)
	if !Equal(Pt(Zap(p[0]), Zap(p[1])), Pt(1, 2)) {
		t.Errorf("quarter turn around (1,1) gave %v, want (1,2)", p)
	}
}

func TestSegmentIntersectionCrossing(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	hit, ok := SegmentIntersection(Pt(0, 0), Pt(2, 0), Pt(1, -1), Pt(1, 1))
	if !ok {
		t.Fatalf("expected crossing segments to intersect")
	}
	assert.InDelta(t, 0.5, hit.TA, 1e-9)
	assert.InDelta(t, 0.5, hit.TB, 1e-9)
	if !Equal(hit.Point, Pt(1, 0)) {
		t.Errorf("intersection point %v, want (1,0)", hit.Point)
	}
}

func TestSegmentIntersectionTouchingEndpoint(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// T-case: endpoint of b lies in the interior of a.
	hit, ok := SegmentIntersection(Pt(0, 0), Pt(4, 0), Pt(2, 0), Pt(2, 3))
	if !ok {
		t.Fatalf("expected touching segments to intersect")
	}
	if hit.TB != 0 {
		t.Errorf("touch parameter on b = %g, want 0", hit.TB)
	}
}

func TestSegmentIntersectionParallel(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	if _, ok := SegmentIntersection(Pt(0, 0), Pt(1, 0), Pt(0, 1), Pt(1, 1)); ok {
		t.Errorf("parallel segments must not intersect")
	}
	if _, ok := SegmentIntersection(Pt(0, 0), Pt(2, 0), Pt(3, 0), Pt(5, 0)); ok {
		t.Errorf("collinear segments are not reported as crossings")
	}
}

func TestSegmentIntersectionMiss(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	if _, ok := SegmentIntersection(Pt(0, 0), Pt(1, 0), Pt(2, -1), Pt(2, 1)); ok {
		t.Errorf("disjoint segments must not intersect")
	}
}

func TestNearestOnSegment(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pt, param, dist := NearestOnSegment(Pt(1, 1), Pt(0, 0), Pt(2, 0))
	if !Equal(pt, Pt(1, 0)) || !Is0(param-0.5) || !Is0(dist-1) {
		t.Errorf("nearest = %v t=%g d=%g, want (1,0) 0.5 1", pt, param, dist)
	}
	_, param, _ = NearestOnSegment(Pt(-5, 0), Pt(0, 0), Pt(2, 0))
	if param != 0 {
		t.Errorf("expected clamped parameter 0, got %g", param)
	}
}

func TestSignedAreaAndWinding(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ccw := orb.Ring{Pt(0, 0), Pt(2, 0), Pt(2, 2), Pt(0, 2)}
	if SignedArea(ccw) != 4 {
		t.Errorf("ccw square area = %g, want 4", SignedArea(ccw))
	}
	if IsClockwise(ccw) {
		t.Errorf("ccw ring misreported as clockwise")
	}
	cw := EnsureClockwise(ccw)
	if !IsClockwise(cw) {
		t.Errorf("EnsureClockwise did not flip winding")
	}
	if SignedArea(cw) != -4 {
		t.Errorf("cw square area = %g, want -4", SignedArea(cw))
	}
}

func TestIsSimple(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	square := orb.Ring{Pt(0, 0), Pt(2, 0), Pt(2, 2), Pt(0, 2)}
	if !IsSimple(square) {
		t.Errorf("square must be simple")
	}
	bowtie := orb.Ring{Pt(0, 0), Pt(2, 2), Pt(2, 0), Pt(0, 2)}
	if IsSimple(bowtie) {
		t.Errorf("bowtie must not be simple")
	}
}

func TestRingContains(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	square := orb.Ring{Pt(0, 0), Pt(2, 0), Pt(2, 2), Pt(0, 2)}
	if !RingContains(square, Pt(1, 1)) {
		t.Errorf("center must be inside")
	}
	if RingContains(square, Pt(3, 1)) {
		t.Errorf("outside point must not be inside")
	}
}

func TestOBBCornersAndOverlap(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := OBB{Center: Pt(0, 0), Axis: Pt(1, 0), HalfLength: 5, HalfRight: 1, HalfLeft: 1}
	corners := a.Corners()
	if !IsClockwise(corners) {
		t.Errorf("OBB corners must be wound clockwise, area %g", SignedArea(corners))
	}
	assert.InDelta(t, 20.0, -SignedArea(corners), 1e-9)

	b := OBB{Center: Pt(0, 0), Axis: Pt(0, 1), HalfLength: 5, HalfRight: 1, HalfLeft: 1}
	if !a.Overlaps(b, 0) {
		t.Errorf("perpendicular crossing footprints must overlap")
	}
	far := OBB{Center: Pt(0, 10), Axis: Pt(1, 0), HalfLength: 5, HalfRight: 1, HalfLeft: 1}
	if a.Overlaps(far, 0) {
		t.Errorf("distant footprints must not overlap")
	}
}

func TestOBBOverlapTolerance(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := OBB{Center: Pt(0, 0), Axis: Pt(1, 0), HalfLength: 2, HalfRight: 1, HalfLeft: 1}
	// Shares the edge z=-1..1 band shifted: centers 3.9 apart, interpenetration 0.1.
	b := OBB{Center: Pt(3.9, 0), Axis: Pt(1, 0), HalfLength: 2, HalfRight: 1, HalfLeft: 1}
	if !a.Overlaps(b, 0) {
		t.Errorf("0.1 interpenetration must overlap at zero tolerance")
	}
	if a.Overlaps(b, 0.2) {
		t.Errorf("0.1 interpenetration must be tolerated at 0.2")
	}
}

func TestOBBAsymmetricSides(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// One-way footprint: no extent on the left of the axis.
	o := OBB{Center: Pt(0, 0), Axis: Pt(1, 0), HalfLength: 3, HalfRight: 2, HalfLeft: 0}
	corners := o.Corners()
	for _, c := range corners {
		if c[1] > Epsilon {
			t.Errorf("one-way footprint leaked to the left: %v", c)
		}
	}
	assert.InDelta(t, 12.0, -SignedArea(corners), 1e-9)
}
