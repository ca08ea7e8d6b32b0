package scrollwindow

import "testing"

func TestScrollModeString(t *testing.T) {
	tests := []struct {
		mode ScrollMode
		want string
	}{
		{Live, "Live"},
		{Backward, "Backward"},
		{Forward, "Forward"},
		{ScrollMode(99), "Unknown"},
	}
	for _, tc := range tests {
		if got := tc.mode.String(); got != tc.want {
			t.Errorf("ScrollMode(%d).String() = %q, want %q", tc.mode, got, tc.want)
		}
	}
}
