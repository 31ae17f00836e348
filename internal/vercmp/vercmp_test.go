package vercmp

import "testing"

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.1", -1},
		{"1.1", "1.0", 1},
		{"1.0-1", "1.0-2", -1},
		{"1.0-2", "1.0-1", 1},
		{"1:1.0", "2:0.1", -1},
		{"1.0a", "1.0", -1},
		{"1.0", "1.0a", 1},
		{"1.0alpha", "1.0beta", -1},
		{"1.011", "1.11", 0},
		{"1.0.1", "1.1", -1},
		{"2.0", "2.0a", 1},
		{"a.b.c", "a.b.c", 0},
	}

	for _, c := range cases {
		if got := Compare(c.a, c.b); got != c.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestCompareIsAntisymmetric(t *testing.T) {
	pairs := [][2]string{
		{"1.0-1", "1.0-2"},
		{"1:0.1", "0:99.9"},
		{"2.1.3", "2.1.3-2"},
	}
	for _, p := range pairs {
		fwd := Compare(p[0], p[1])
		rev := Compare(p[1], p[0])
		if fwd != -rev {
			t.Errorf("Compare(%q,%q)=%d and Compare(%q,%q)=%d are not antisymmetric", p[0], p[1], fwd, p[1], p[0], rev)
		}
	}
}
