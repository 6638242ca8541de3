package monthlog

import (
	"bufio"
	"io"
	"strconv"
)

// A Month associates a section label with the date fragment selecting its
// records.
type Month struct {
	Label    string // lowercase 3-letter abbreviation
	Fragment string // "-MM-"
}

// Months lists the report sections, in calendar order.
var Months = [12]Month{
	{"jan", "-01-"},
	{"feb", "-02-"},
	{"mar", "-03-"},
	{"apr", "-04-"},
	{"may", "-05-"},
	{"jun", "-06-"},
	{"jul", "-07-"},
	{"aug", "-08-"},
	{"sep", "-09-"},
	{"oct", "-10-"},
	{"nov", "-11-"},
	{"dec", "-12-"},
}

// A Group holds the payloads of the records of a month having the same type
// flag.
type Group struct {
	Type     byte     // 'M' or 'R'
	Payloads []string // last field of each record, in record order
}

// Len returns the number of records in the group.
func (g Group) Len() int { return len(g.Payloads) }

// Section is the part of the report relative to a single month.
type Section struct {
	Month Month
	M, R  Group
}

// Report is the monthly report of a dataset. It always has 12 sections.
type Report struct {
	Sections [12]Section
}

// NewReport builds the report of lines, which should already be sorted by
// date. A line counts in every month whose fragment it contains.
func NewReport(lines []string) *Report {
	rep := &Report{}
	for i, m := range Months {
		month := Filter(lines, m.Fragment)
		rep.Sections[i] = Section{
			Month: m,
			M:     Group{Type: 'M', Payloads: LastColumn(Filter(month, TypeM))},
			R:     Group{Type: 'R', Payloads: LastColumn(Filter(month, TypeR))},
		}
	}
	return rep
}

// NumRecords returns the total number of records listed in the report.
func (rep *Report) NumRecords() int {
	n := 0
	for _, s := range rep.Sections {
		n += s.M.Len() + s.R.Len()
	}
	return n
}

// WriteTo writes the textual report to w. For each month, in order, it
// writes the month label on its own line, followed by the M group line then
// the R group line, each one only if the group is not empty:
//
//  jan
//  M 2: payload1 payload2
//  R 1: payload3
//  feb
//  ...
//
// Every payload is followed by a space.
func (rep *Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	bw := bufio.NewWriter(cw)

	for _, s := range rep.Sections {
		bw.WriteString(s.Month.Label)
		bw.WriteByte('\n')
		writeGroup(bw, s.M)
		writeGroup(bw, s.R)
	}

	err := bw.Flush()
	return cw.n, err
}

func writeGroup(bw *bufio.Writer, g Group) {
	if g.Len() == 0 {
		return
	}

	bw.WriteByte(g.Type)
	bw.WriteByte(' ')
	bw.WriteString(strconv.Itoa(g.Len()))
	bw.WriteString(": ")
	for _, p := range g.Payloads {
		bw.WriteString(p)
		bw.WriteByte(' ')
	}
	bw.WriteByte('\n')
}

// WriteReport builds the report of lines and writes it to w.
func WriteReport(w io.Writer, lines []string) error {
	_, err := NewReport(lines).WriteTo(w)
	return err
}

type countWriter struct {
	w io.Writer
	n int64
}

func (cw *countWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
