package eyes

import (
	"strconv"
)

// Key identifies an image within a Set. It is either a positional index,
// assigned to images added without names, or a caller supplied name.
//
// Keys are comparable and safe to use as map keys. Two keys are equal only
// if they are of the same kind with the same value, so Index(0) and
// Name("0") are different images.
//
// The text form, used for JSON, does not record the kind. A name made of
// decimal digits such as Name("5") marshals as "5" and unmarshals as
// Index(5).
type Key struct {
	name  string
	index int
	named bool
}

// Index returns the key of the i-th anonymous image.
func Index(i int) Key {
	return Key{index: i}
}

// Name returns the key for a named image.
func Name(name string) Key {
	return Key{name: name, named: true}
}

// Indexed reports the index of a positional key.
func (k Key) Indexed() (int, bool) {
	return k.index, !k.named
}

// Named reports the name of a named key.
func (k Key) Named() (string, bool) {
	return k.name, k.named
}

// String returns the decimal index or the name.
func (k Key) String() string {
	if k.named {
		return k.name
	}
	return strconv.Itoa(k.index)
}

// ParseKey converts the textual form of a key back into a Key.
// Decimal integers become indices; anything else becomes a name.
func ParseKey(s string) Key {
	if i, err := strconv.Atoi(s); err == nil {
		return Index(i)
	}
	return Name(s)
}

// ParseKeys applies ParseKey to each element.
func ParseKeys(ss []string) []Key {
	if len(ss) == 0 {
		return nil
	}
	keys := make([]Key, len(ss))
	for i, s := range ss {
		keys[i] = ParseKey(s)
	}
	return keys
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Decimal text always
// becomes an index; see Key.
func (k *Key) UnmarshalText(text []byte) error {
	*k = ParseKey(string(text))
	return nil
}
