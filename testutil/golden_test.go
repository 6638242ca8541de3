package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

// recordingTB records errors instead of failing.
type recordingTB struct {
	testing.TB
	errors []string
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Errorf(format string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func TestDiffLines(t *testing.T) {
	tests := []struct {
		name      string
		want, got string
		contains  []string
	}{
		{
			name: "equal",
			want: "jan\nM 1: a \n",
			got:  "jan\nM 1: a \n",
		},
		{
			name:     "trailing space",
			want:     "jan\nM 1: a \n",
			got:      "jan\nM 1: a\n",
			contains: []string{"1 differing lines", "report:2:", `want "M 1: a \n"`, `got  "M 1: a\n"`},
		},
		{
			name:     "missing line",
			want:     "jan\nfeb\n",
			got:      "jan\n",
			contains: []string{"report:2:", `got  ""`, "report:3:", "got  <missing>"},
		},
		{
			name:     "many lines",
			want:     strings.Repeat("a\n", 15),
			got:      strings.Repeat("b\n", 15),
			contains: []string{"15 differing lines", "and 5 more differing lines"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recordingTB{TB: t}
			DiffLines(r, "report", tt.want, tt.got)

			if len(tt.contains) == 0 {
				if len(r.errors) != 0 {
					t.Fatalf("unexpected errors: %q", r.errors)
				}
				return
			}
			if len(r.errors) != 1 {
				t.Fatalf("got %d errors, want 1", len(r.errors))
			}
			for _, s := range tt.contains {
				if !strings.Contains(r.errors[0], s) {
					t.Errorf("error doesn't contain %q:\n%s", s, r.errors[0])
				}
			}
		})
	}
}

func TestDiffWithGoldenMissingFile(t *testing.T) {
	r := &recordingTB{TB: t}
	DiffWithGolden(r, []byte("jan\n"), filepath.Join(t.TempDir(), "missing.golden"))
	if len(r.errors) != 1 || !strings.Contains(r.errors[0], "can't read golden file") {
		t.Errorf("errors = %q", r.errors)
	}
}
