package monthlog

import "strings"

// FieldSeparator is the byte separating the fields of a record.
const FieldSeparator byte = ' '

// Record is a parsed view over a single line of text.
//
// Parsing only records the positions of the field separators; fields are
// sliced out of the original line when they are accessed. Consecutive
// separators delimit empty fields, they are never collapsed.
type Record struct {
	// idx holds, for each field, the index of the separator that precedes
	// it (idx[0] is always -1), followed by len(data).
	idx  []int
	data []byte
}

// Parse parses text into r, overwriting any previous content. r keeps a
// reference to text, which must not be modified afterwards.
func (r *Record) Parse(text []byte) {
	r.idx = append(r.idx[:0], -1)
	for i, ch := range text {
		if ch == FieldSeparator {
			r.idx = append(r.idx, i)
		}
	}
	r.idx = append(r.idx, len(text))
	r.data = text
}

// NumFields returns the number of fields of the record. A parsed record has
// always at least one field, possibly empty.
func (r *Record) NumFields() int {
	if len(r.idx) == 0 {
		return 0
	}
	return len(r.idx) - 1
}

// Field returns the i-th field. It panics if i is out of range.
func (r *Record) Field(i int) []byte {
	return r.data[r.idx[i]+1 : r.idx[i+1]]
}

// Last returns the last field, nil on a zero-value record.
func (r *Record) Last() []byte {
	n := r.NumFields()
	if n == 0 {
		return nil
	}
	return r.Field(n - 1)
}

// Fields returns a copy of all the fields, in order.
func (r *Record) Fields() []string {
	fields := make([]string, r.NumFields())
	for i := range fields {
		fields[i] = string(r.Field(i))
	}
	return fields
}

// Text returns the original line.
func (r *Record) Text() []byte { return r.data }

// Split splits line into its space-delimited fields.
//
// Splitting is done on every single space: two consecutive spaces produce
// an empty field and a line without spaces yields a single field equal to
// the line. Joining the result with single spaces gives back line.
func Split(line string) []string {
	return strings.Split(line, string(FieldSeparator))
}
