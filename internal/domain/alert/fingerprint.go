package alert

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"unicode/utf16"
)

// Fingerprint is the hex encoded SHA-256 of an alert's canonical form.
type Fingerprint string

// Fingerprint hashes the canonical form of the alert.
func (r Raw) Fingerprint() Fingerprint {
	sum := sha256.Sum256(r.Canonical())
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Canonical serializes the alert as a JSON object with sorted keys, ", " and ": "
// separators and every non-ASCII rune escaped. The layout is byte-compatible with
// the hashes already stored in the alerts table.
func (r Raw) Canonical() []byte {
	var b bytes.Buffer
	b.Grow(len(r.Description) + len(r.Title) + 64)
	b.WriteString(`{"description": `)
	writeASCIIString(&b, r.Description)
	b.WriteString(`, "title": `)
	writeASCIIString(&b, r.Title)
	b.WriteString(`, "type": `)
	writeASCIIString(&b, string(r.Type))
	b.WriteByte('}')
	return b.Bytes()
}

func writeASCIIString(b *bytes.Buffer, s string) {
	b.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case c >= 0x20 && c <= 0x7e:
				b.WriteRune(c)
			case c > 0xffff:
				hi, lo := utf16.EncodeRune(c)
				fmt.Fprintf(b, `\u%04x\u%04x`, hi, lo)
			default:
				fmt.Fprintf(b, `\u%04x`, c)
			}
		}
	}
	b.WriteByte('"')
}
