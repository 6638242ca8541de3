package monthlog

import (
	"reflect"
	"strings"
	"testing"
)

func TestRecordParse(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{line: "", want: []string{""}},
		{line: "single", want: []string{"single"}},
		{line: "a b c", want: []string{"a", "b", "c"}},
		{line: "a  b", want: []string{"a", "", "b"}},
		{line: " lead", want: []string{"", "lead"}},
		{line: "trail ", want: []string{"trail", ""}},
		{line: "x-02-01- M lastA", want: []string{"x-02-01-", "M", "lastA"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			var rec Record
			rec.Parse([]byte(tt.line))

			if got := rec.Fields(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Fields() = %q, want %q", got, tt.want)
			}
			if got := rec.NumFields(); got != len(tt.want) {
				t.Errorf("NumFields() = %d, want %d", got, len(tt.want))
			}
			if got := string(rec.Last()); got != tt.want[len(tt.want)-1] {
				t.Errorf("Last() = %q, want %q", got, tt.want[len(tt.want)-1])
			}
			if got := string(rec.Text()); got != tt.line {
				t.Errorf("Text() = %q, want %q", got, tt.line)
			}
			if got := Split(tt.line); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordReuse(t *testing.T) {
	var rec Record
	rec.Parse([]byte("a b c d e"))
	rec.Parse([]byte("f g"))

	if got, want := rec.Fields(), []string{"f", "g"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %q, want %q", got, want)
	}
}

func TestRecordZero(t *testing.T) {
	var rec Record
	if rec.NumFields() != 0 {
		t.Errorf("NumFields() = %d, want 0", rec.NumFields())
	}
	if rec.Last() != nil {
		t.Errorf("Last() = %q, want nil", rec.Last())
	}
}

func TestRecordLongLine(t *testing.T) {
	// Offsets are plain ints: a line is only bounded by memory.
	if k := reflect.TypeOf(Record{}.idx).Elem().Kind(); k != reflect.Int {
		t.Fatalf("separator offsets are %v, want int", k)
	}

	long := strings.Repeat("x", 3<<20)
	line := "a-15-01-2021 M " + long + " " + long

	var rec Record
	rec.Parse([]byte(line))
	if got := rec.NumFields(); got != 4 {
		t.Fatalf("NumFields() = %d, want 4", got)
	}
	if got := rec.Field(2); string(got) != long {
		t.Errorf("Field(2) has %d bytes, want %d", len(got), len(long))
	}
	if got := rec.Last(); string(got) != long {
		t.Errorf("Last() has %d bytes, want %d", len(got), len(long))
	}
}

func TestSplitJoin(t *testing.T) {
	for _, line := range []string{"", " ", "a", "a b", "a  b ", "H KEY extra"} {
		if got := strings.Join(Split(line), " "); got != line {
			t.Errorf("Join(Split(%q)) = %q", line, got)
		}
	}
}

func BenchmarkRecordParse(b *testing.B) {
	line := []byte("id-15-01-2021 M some more fields and finally the-payload")
	var rec Record

	b.ReportAllocs()
	for n := 0; n < b.N; n++ {
		rec.Parse(line)
		_ = rec.Last()
	}
}
