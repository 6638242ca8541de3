package monthlog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// ReadLines reads r until EOF and returns its lines in order. Line
// terminators (\n or \r\n) are stripped; a final line without terminator is
// kept, a final empty line is not. There is no limit on the line length.
func ReadLines(r io.Reader) ([]string, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	lines := []string{}
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimSuffix(line, []byte{'\n'})
			line = bytes.TrimSuffix(line, []byte{'\r'})
			lines = append(lines, string(line))
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("can't read line %d: %w", len(lines)+1, err)
		}
	}
}
