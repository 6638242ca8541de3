package monthlog

// LastColumn reduces each line to its last space-delimited field.
//
// The returned slice has the same length as lines. A line that is empty, or
// that ends with a space, yields an empty string.
func LastColumn(lines []string) []string {
	var rec Record
	last := make([]string, len(lines))
	for i, l := range lines {
		rec.Parse([]byte(l))
		last[i] = string(rec.Last())
	}
	return last
}
