package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ── JSON list column types ──
//
// days_of_week and target_divisions are stored as JSON-encoded arrays in a
// scalar column.  Membership tests happen in application code (the matcher's
// fine phase), never in the WHERE clause.

// IntList maps a JSON array column such as days_of_week to []int.
type IntList []int

// Scan decodes the JSON array returned by MySQL.  NULL yields a nil list.
func (l *IntList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("IntList.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, l)
}

// Value encodes the list as a JSON array.  A nil list becomes SQL NULL.
func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Contains reports whether n is a member of the list.
func (l IntList) Contains(n int) bool {
	for _, v := range l {
		if v == n {
			return true
		}
	}
	return false
}

// StringList maps a JSON array column such as target_divisions to []string.
type StringList []string

// Scan decodes the JSON array returned by MySQL.  NULL yields a nil list.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("StringList.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, l)
}

// Value encodes the list as a JSON array.  A nil list becomes SQL NULL.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Contains reports whether s is a member of the list.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// ── TIME column type ──

// TimeOfDay represents a MySQL TIME column as seconds since midnight.
// It carries no date or timezone; comparisons are purely clock based.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from clock components.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// TimeOfDayFrom extracts the clock portion of a timestamp.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

// Scan parses the HH:MM:SS text the MySQL driver returns for TIME columns.
func (t *TimeOfDay) Scan(src interface{}) error {
	if src == nil {
		*t = 0
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	case time.Time:
		*t = TimeOfDayFrom(v)
		return nil
	default:
		return fmt.Errorf("TimeOfDay.Scan: unsupported type %T", src)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value renders the time as HH:MM:SS for storage.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// String renders the time as HH:MM:SS.
func (t TimeOfDay) String() string {
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int
	parts := strings.Count(s, ":")
	var err error
	switch parts {
	case 1:
		_, err = fmt.Sscanf(s, "%d:%d", &h, &m)
	case 2:
		_, err = fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec)
	default:
		err = fmt.Errorf("malformed time %q", s)
	}
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return NewTimeOfDay(h, m, sec), nil
}
