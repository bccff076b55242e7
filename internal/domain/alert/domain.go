package alert

import (
	"cmp"
	"slices"
	"strings"
)

type Type string

const (
	TypeDanger  Type = "danger"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
)

// ParseType maps a source label onto a known Type. Anything unknown is info.
func ParseType(s string) Type {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeDanger, TypeWarning, TypeInfo, TypeSuccess:
		return t
	default:
		return TypeInfo
	}
}

// Raw is an alert as observed on the source page. It is never stored as is.
type Raw struct {
	Type        Type   `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NewRaw normalizes scraped fields. Invalid UTF-8 is replaced with U+FFFD so the
// text that is hashed is the text that is stored.
func NewRaw(typ, title, description string) Raw {
	return Raw{
		Type:        ParseType(typ),
		Title:       strings.ToValidUTF8(title, "\uFFFD"),
		Description: strings.ToValidUTF8(description, "\uFFFD"),
	}
}

// Key identifies a persisted alert.
type Key struct {
	LineID int64       `json:"line_id"`
	Hash   Fingerprint `json:"alert_hash"`
}

func KeyOf(lineID int64, r Raw) Key {
	return Key{LineID: lineID, Hash: r.Fingerprint()}
}

func CompareKeys(a, b Key) int {
	if c := cmp.Compare(a.LineID, b.LineID); c != 0 {
		return c
	}
	return cmp.Compare(a.Hash, b.Hash)
}

type KeySet map[Key]struct{}

func NewKeySet(keys ...Key) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s KeySet) Add(k Key) { s[k] = struct{}{} }

func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Sorted returns the keys ordered by line id, then hash.
func (s KeySet) Sorted() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.SortFunc(out, CompareKeys)
	return out
}

// Persisted is a stored alert row. Its payload never changes while the key exists.
type Persisted struct {
	Key
	Raw
}

// LineAlerts groups alerts of one line for rendering.
type LineAlerts struct {
	LineID   int64
	LineName string
	Alerts   []Raw
}
