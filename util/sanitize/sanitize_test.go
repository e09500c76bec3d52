package sanitize

import "testing"

func TestForProjectName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Plasma Field", "plasma_field"},
		{"glow-2.0", "glow_2_0"},
		{"3d-noise", "sketch_3d_noise"},
		{"", ""},
		{"ünïcode!", "ncode"},
	}
	for _, tc := range cases {
		if got := ForProjectName(tc.in); got != tc.want {
			t.Errorf("ForProjectName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestForFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Cool Sketch", "my-cool-sketch"},
		{"a--b---c", "a-b-c"},
		{"-trim-", "trim"},
	}
	for _, tc := range cases {
		if got := ForFilename(tc.in); got != tc.want {
			t.Errorf("ForFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
