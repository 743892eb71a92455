package backend

import (
	"fmt"
	"time"
)

// dateLayouts are tried in order by ParseDateTime. Zoneless layouts are
// interpreted as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

// ParseDateTime parses a timestamp string in the formats the registry and
// the CLI produce (ISO-8601 with or without fractional seconds or zone,
// plus bare dates) and returns it normalized to UTC.
func ParseDateTime(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable datetime %q", s)
}
