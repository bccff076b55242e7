package bot

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/NordCoder/trenes-alerts/internal/domain/line"
)

const (
	actionAdd    = "add_line"
	actionRemove = "remove_line"

	// Telegram rejects callback data longer than 64 bytes.
	maxCallbackData = 64
)

// callbackData encodes "<action>:<line id>:<line name>", cutting the name on a rune boundary to fit.
func callbackData(action string, l line.Line) string {
	prefix := action + ":" + strconv.FormatInt(l.ID, 10) + ":"
	name := l.Name
	for len(prefix)+len(name) > maxCallbackData && name != "" {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}
	return prefix + name
}

type callback struct {
	Action   string
	LineID   int64
	LineName string
}

func parseCallback(data string) (callback, error) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 {
		return callback{}, fmt.Errorf("malformed callback %q", data)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return callback{}, fmt.Errorf("malformed callback line id %q", parts[1])
	}
	return callback{Action: parts[0], LineID: id, LineName: parts[2]}, nil
}
