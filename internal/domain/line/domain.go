package line

// Line is a transit line. Rows are managed out of band.
type Line struct {
	ID   int64
	Name string
}

// ByName indexes lines by their display name.
func ByName(lines []Line) map[string]Line {
	out := make(map[string]Line, len(lines))
	for _, l := range lines {
		out[l.Name] = l
	}
	return out
}
