package syncer

import (
	"slices"

	"github.com/NordCoder/trenes-alerts/internal/domain/alert"
	"github.com/NordCoder/trenes-alerts/internal/domain/line"
)

// Resolve maps scraped line names onto persisted lines. Names without a line are
// dropped and returned sorted so the caller can report them.
func Resolve(lines []line.Line, byName map[string][]alert.Raw) (map[int64][]alert.Raw, []string) {
	known := line.ByName(lines)
	out := make(map[int64][]alert.Raw, len(byName))
	var dropped []string
	for name, alerts := range byName {
		l, ok := known[name]
		if !ok {
			dropped = append(dropped, name)
			continue
		}
		out[l.ID] = append(out[l.ID], alerts...)
	}
	slices.Sort(dropped)
	return out, dropped
}
