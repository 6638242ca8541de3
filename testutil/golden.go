package testutil

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"testing"
)

// UpdateGolden is set by the -update flag, in which case golden files are
// rewritten instead of being compared.
var UpdateGolden = flag.Bool("update", false, "update golden files")

// maxReportedLines caps the number of differing lines DiffLines reports.
const maxReportedLines = 10

// DiffWithGolden compares got with the content of the golden file. With
// -update, the golden file is overwritten with got instead.
func DiffWithGolden(t testing.TB, got []byte, golden string) {
	t.Helper()

	if *UpdateGolden {
		if err := os.WriteFile(golden, got, 0644); err != nil {
			t.Errorf("can't update golden file %s: %v", golden, err)
		}
		return
	}

	want, err := os.ReadFile(golden)
	if err != nil {
		t.Errorf("can't read golden file %s: %v", golden, err)
		return
	}

	DiffLines(t, golden, string(want), string(got))
}

// DiffLines fails the test if got and want differ, listing the differing
// lines by number. Trailing spaces are made visible since report lines end
// with one.
func DiffLines(t testing.TB, name, want, got string) {
	t.Helper()

	if want == got {
		return
	}

	wl := strings.SplitAfter(want, "\n")
	gl := strings.SplitAfter(got, "\n")

	var sb strings.Builder
	ndiff := 0
	for i := 0; i < len(wl) || i < len(gl); i++ {
		w, g := lineOrMissing(wl, i), lineOrMissing(gl, i)
		if w == g {
			continue
		}
		ndiff++
		if ndiff > maxReportedLines {
			continue
		}
		fmt.Fprintf(&sb, "\n%s:%d:\n  want %s\n  got  %s", name, i+1, w, g)
	}
	if ndiff > maxReportedLines {
		fmt.Fprintf(&sb, "\n... and %d more differing lines", ndiff-maxReportedLines)
	}

	t.Errorf("%s: %d differing lines%s", name, ndiff, sb.String())
}

func lineOrMissing(lines []string, i int) string {
	if i >= len(lines) {
		return "<missing>"
	}
	return fmt.Sprintf("%q", lines[i])
}
