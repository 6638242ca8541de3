package monthlog

import "strings"

// Type flags, as they appear in a record: a single letter surrounded by
// single spaces.
const (
	TypeM = " M "
	TypeR = " R "
)

// Filter returns the lines containing keyword, in their original order.
//
// The match is a plain substring match, it is not aligned on fields. An
// empty result is returned as an empty, non-nil slice.
func Filter(lines []string, keyword string) []string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.Contains(l, keyword) {
			kept = append(kept, l)
		}
	}
	return kept
}
