package alert

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_KnownVectors(t *testing.T) {
	cases := []struct {
		name string
		in   Raw
		want Fingerprint
	}{
		{
			name: "empty info",
			in:   Raw{Type: TypeInfo},
			want: "0a2603efb8bcbb5f01977e0258d7c0104a7b20c67c4bd7695da462e97f043841",
		},
		{
			name: "html markup is not escaped",
			in:   Raw{Type: TypeDanger, Title: "Servicio interrumpido", Description: "Por <b>obras</b> en Haedo"},
			want: "0c4644aa70c6fbe17b4b4332789f911c82b4cddafc6f601fed25206f515dc559",
		},
		{
			name: "non ascii and control characters",
			in: Raw{
				Type:        TypeWarning,
				Title:       "Línea Sarmiento",
				Description: "Demoras de 10’ \"aprox\"\n🚆 & <b>x</b>\t\\",
			},
			want: "eb90f2bfd66073c78f792fc1ca56a893bdbdf5850be96fa46b210bb37cb357fa",
		},
		{
			name: "short a",
			in:   Raw{Type: TypeInfo, Title: "A", Description: "a"},
			want: "1b7a818c0556897bff3109ec04a108d2a767ff60ed28951dca936e60023a8d52",
		},
		{
			name: "short b",
			in:   Raw{Type: TypeInfo, Title: "B", Description: "b"},
			want: "1e6955b3bfea71d3c49fe63c69056f5750bd8dc735325e86836ffb23cde176b5",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Fingerprint())
		})
	}
}

func TestCanonical_Layout(t *testing.T) {
	r := Raw{
		Type:        TypeWarning,
		Title:       "Línea Sarmiento",
		Description: "Demoras de 10’ \"aprox\"\n🚆 & <b>x</b>\t\\",
	}
	want := `{"description": "Demoras de 10\u2019 \"aprox\"\n\ud83d\ude86 & <b>x</b>\t\\", "title": "L\u00ednea Sarmiento", "type": "warning"}`
	assert.Equal(t, want, string(r.Canonical()))
}

func TestCanonical_ControlCharacters(t *testing.T) {
	r := Raw{Type: TypeInfo, Title: "\x7f\x01\x1f/<>", Description: "\b\f\r"}
	want := `{"description": "\b\f\r", "title": "\u007f\u0001\u001f/<>", "type": "info"}`
	assert.Equal(t, want, string(r.Canonical()))
}

func TestFingerprint_DeterministicAndSensitive(t *testing.T) {
	base := Raw{Type: TypeWarning, Title: "Mitre", Description: "Demoras"}
	require.Equal(t, base.Fingerprint(), Raw{Type: TypeWarning, Title: "Mitre", Description: "Demoras"}.Fingerprint())

	variants := []Raw{
		{Type: TypeDanger, Title: "Mitre", Description: "Demoras"},
		{Type: TypeWarning, Title: "Mitre ", Description: "Demoras"},
		{Type: TypeWarning, Title: "Mitre", Description: "demoras"},
		{Type: TypeWarning, Title: "Demoras", Description: "Mitre"},
	}
	for _, v := range variants {
		assert.NotEqual(t, base.Fingerprint(), v.Fingerprint(), "%+v", v)
	}
	assert.Len(t, string(base.Fingerprint()), 64)
}

func TestNewRaw_ReplacesInvalidUTF8(t *testing.T) {
	a := NewRaw("warning", "Mitre \xff", "Demoras \xfe\xfd")
	b := NewRaw("warning", "Mitre \xfe", "Demoras \xff")

	assert.True(t, utf8.ValidString(a.Title))
	assert.True(t, utf8.ValidString(a.Description))
	assert.Equal(t, "Mitre \uFFFD", a.Title)
	assert.Equal(t, "Demoras \uFFFD", a.Description)

	// The stored text is identical, so the identity must be too.
	assert.Equal(t, a, b)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, NewRaw("warning", "Mitre \uFFFD", "Demoras \uFFFD").Fingerprint(), a.Fingerprint())
}

func TestParseType(t *testing.T) {
	assert.Equal(t, TypeDanger, ParseType("danger"))
	assert.Equal(t, TypeSuccess, ParseType(" Success "))
	assert.Equal(t, TypeInfo, ParseType(""))
	assert.Equal(t, TypeInfo, ParseType("primary"))
	assert.Equal(t, TypeInfo, NewRaw("secondary", "t", "d").Type)
}

func TestKeySet_Sorted(t *testing.T) {
	s := NewKeySet(Key{LineID: 2, Hash: "a"}, Key{LineID: 1, Hash: "b"}, Key{LineID: 1, Hash: "a"})
	s.Add(Key{LineID: 1, Hash: "a"})
	assert.True(t, s.Has(Key{LineID: 2, Hash: "a"}))
	assert.False(t, s.Has(Key{LineID: 2, Hash: "b"}))
	assert.Equal(t, []Key{{1, "a"}, {1, "b"}, {2, "a"}}, s.Sorted())
}
