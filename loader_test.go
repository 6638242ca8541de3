package monthlog

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func TestReadLines(t *testing.T) {
	long := strings.Repeat("x", 200*1024)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: []string{}},
		{name: "single newline", input: "\n", want: []string{""}},
		{name: "no final newline", input: "a\nb", want: []string{"a", "b"}},
		{name: "final newline", input: "a\nb\n", want: []string{"a", "b"}},
		{name: "blank lines", input: "a\n\nb\n", want: []string{"a", "", "b"}},
		{name: "crlf", input: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "long line", input: "h\n" + long + "\n", want: []string{"h", long}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadLines(iotest.HalfReader(strings.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadLines() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadLines() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadLinesError(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(strings.NewReader("a\nb\n"), iotest.ErrReader(boom))

	_, err := ReadLines(r)
	if !errors.Is(err, boom) {
		t.Fatalf("ReadLines() error = %v, want %v", err, boom)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error %q should mention line 3", err)
	}
}
