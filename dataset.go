package monthlog

// Keyword returns the dataset keyword held by the header line, that is its
// second space-delimited field.
func Keyword(header string) (string, error) {
	var rec Record
	rec.Parse([]byte(header))
	if rec.NumFields() < 2 {
		return "", &MalformedHeaderError{Header: header}
	}
	return string(rec.Field(1)), nil
}

// SelectDataset takes the keyword from the first line and returns it along
// with the following lines containing it. The header itself is never part
// of the dataset.
func SelectDataset(lines []string) (keyword string, records []string, err error) {
	if len(lines) == 0 {
		return "", nil, ErrEmptyInput
	}

	keyword, err = Keyword(lines[0])
	if err != nil {
		return "", nil, err
	}

	return keyword, Filter(lines[1:], keyword), nil
}
