package textutil

import "testing"

func TestCleanPathSegmentReplacesUnsafeCharacters(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`AC/DC`, "AC_DC"},
		{`What?`, "What_"},
		{`a:b*c|d`, "a_b_c_d"},
		{`[live], vol; 2 = "x"`, "_live__ vol_ 2 _ _x_"},
		{"nul\x00byte", "nul_byte"},
	}
	for _, tc := range cases {
		if got := CleanPathSegment(tc.in, false); got != tc.want {
			t.Errorf("CleanPathSegment(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanPathSegmentPeriodHandling(t *testing.T) {
	if got := CleanPathSegment("R.E.M.", false); got != "R_E_M_" {
		t.Fatalf("directory segment kept periods: %q", got)
	}
	if got := CleanPathSegment("track.flac", true); got != "track.flac" {
		t.Fatalf("filename segment lost its extension separator: %q", got)
	}
}
