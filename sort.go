package monthlog

import (
	"sort"
	"strings"
)

// A SortKey orders records chronologically. It is built out of the first
// two dash-separated segments of a record, the line "id-05-03-x" giving
// Month="05" and Day="id".
//
// Both parts are compared as strings: "10" sorts before "2".
type SortKey struct {
	Month string // dash segment at index 1
	Day   string // dash segment at index 0
}

// Less reports whether k sorts before other, Month first then Day.
func (k SortKey) Less(other SortKey) bool {
	if k.Month != other.Month {
		return k.Month < other.Month
	}
	return k.Day < other.Day
}

// KeyOf returns the sort key of line. line must contain at least one dash,
// otherwise a *MalformedRecordError is returned (with Line set to 0).
func KeyOf(line string) (SortKey, error) {
	segs := strings.SplitN(line, "-", 3)
	if len(segs) < 2 {
		return SortKey{}, &MalformedRecordError{Text: line}
	}
	return SortKey{Month: segs[1], Day: segs[0]}, nil
}

// SortByDate returns a copy of lines sorted in ascending SortKey order.
// Lines with equal keys keep their relative order.
//
// All keys are computed before sorting, so that the first malformed line,
// if any, is reported with its 1-based position in lines.
func SortByDate(lines []string) ([]string, error) {
	type keyed struct {
		key  SortKey
		line string
	}

	recs := make([]keyed, len(lines))
	for i, l := range lines {
		k, err := KeyOf(l)
		if err != nil {
			return nil, &MalformedRecordError{Line: i + 1, Text: l}
		}
		recs[i] = keyed{key: k, line: l}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].key.Less(recs[j].key)
	})

	sorted := make([]string, len(recs))
	for i := range recs {
		sorted[i] = recs[i].line
	}
	return sorted, nil
}
