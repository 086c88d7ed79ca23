package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testFrustum() Frustum {
	proj := mgl32.Perspective(mgl32.DegToRad(70), 16.0/9.0, 0.1, 512)
	view := mgl32.LookAtV(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{0, 0, -1},
		mgl32.Vec3{0, 1, 0},
	)
	return NewFrustum(proj.Mul4(view))
}

func TestFrustumBoxInFront(t *testing.T) {
	f := testFrustum()
	if !f.IntersectsAABB(mgl32.Vec3{-8, -8, -40}, mgl32.Vec3{8, 8, -24}) {
		t.Errorf("Expected box in front of camera to intersect frustum")
	}
}

func TestFrustumBoxBehind(t *testing.T) {
	f := testFrustum()
	if f.IntersectsAABB(mgl32.Vec3{-8, -8, 24}, mgl32.Vec3{8, 8, 40}) {
		t.Errorf("Expected box behind camera to be culled")
	}
}

func TestFrustumBoxFarBeyond(t *testing.T) {
	f := testFrustum()
	if f.IntersectsAABB(mgl32.Vec3{-8, -8, -2000}, mgl32.Vec3{8, 8, -1800}) {
		t.Errorf("Expected box beyond the far plane to be culled")
	}
}

func TestFrustumBoxToSide(t *testing.T) {
	f := testFrustum()
	if f.IntersectsAABB(mgl32.Vec3{500, -8, -40}, mgl32.Vec3{516, 8, -24}) {
		t.Errorf("Expected box far to the side to be culled")
	}
}

func TestFrustumBoxStraddlingPlane(t *testing.T) {
	f := testFrustum()
	// Box straddles the near plane: partially visible boxes stay.
	if !f.IntersectsAABB(mgl32.Vec3{-1, -1, -2}, mgl32.Vec3{1, 1, 2}) {
		t.Errorf("Expected box straddling the near plane to intersect frustum")
	}
}
