package marionette

import "testing"

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	cases := []struct {
		x, y float64
		want bool
	}{
		{25, 40, true},
		{10, 20, true}, // edges are inside
		{40, 60, true},
		{9, 40, false},
		{41, 40, false},
		{25, 61, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.x, c.y); got != c.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestBoneImageRect(t *testing.T) {
	img := BoneImage{Name: "skin", X: -16, Y: -8, Width: 32, Height: 16}
	r := img.Rect()
	if r != (Rect{X: -16, Y: -8, Width: 32, Height: 16}) {
		t.Errorf("Rect = %+v", r)
	}
	if !r.Contains(0, 0) {
		t.Error("center not inside the image rect")
	}
}

func TestLerp(t *testing.T) {
	assertNear(t, "start", lerp(2, 10, 0), 2)
	assertNear(t, "end", lerp(2, 10, 1), 10)
	assertNear(t, "mid", lerp(2, 10, 0.5), 6)

	v := lerpVec2(Vec2{X: 0, Y: 10}, Vec2{X: 4, Y: -10}, 0.25)
	assertNear(t, "vec X", v.X, 1)
	assertNear(t, "vec Y", v.Y, 5)
}
