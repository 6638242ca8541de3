package monthlog

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// SizeBytes is a configuration value expressing a size in bytes. In TOML it
// can either be written as an integer or as a humanized string, like "1.5MB"
// or "64 KiB".
type SizeBytes uint64

// UnmarshalTOML implements toml.Unmarshaler.
func (b *SizeBytes) UnmarshalTOML(p interface{}) error {
	var actual uint64

	switch v := p.(type) {
	case float64:
		if v < 0 || v >= math.MaxUint64 {
			return fmt.Errorf("invalid size in bytes (%v): out of range", v)
		}
		actual = uint64(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("invalid size in bytes (%v): value must be >= 0", v)
		}
		actual = uint64(v)
	case string:
		if v != "" {
			var err error
			actual, err = humanize.ParseBytes(v)
			if err != nil {
				return fmt.Errorf("invalid size in bytes (%v): %v", v, err)
			}
		}
	default:
		return fmt.Errorf("unexpected type (%T): unexpected value type", v)
	}
	*b = SizeBytes(actual)
	return nil
}

// String returns the humanized size, like "1.5 MB".
func (b SizeBytes) String() string {
	return humanize.Bytes(uint64(b))
}
