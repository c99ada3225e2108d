// Package farm defines the records exchanged with the farm REST API.
package farm

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ID is a record identifier. The API emits identifiers as numbers or numeric
// strings depending on the endpoint; both decode to the same value.
type ID int64

// UnmarshalJSON decodes numbers, numeric strings and null. Anything else
// decodes to zero.
func (id *ID) UnmarshalJSON(data []byte) error {
	raw, ok := decodeLoose(data)
	if !ok {
		*id = 0
		return nil
	}
	v, err := cast.ToInt64E(raw)
	if err != nil {
		f, ferr := cast.ToFloat64E(raw)
		if ferr != nil {
			*id = 0
			return nil
		}
		v = int64(f)
	}
	*id = ID(v)
	return nil
}

// String renders the identifier in base 10, or "" for zero.
func (id ID) String() string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a form value. Blank or malformed input yields zero.
func ParseID(s string) ID {
	v, err := cast.ToInt64E(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return ID(v)
}

// Number is a lenient numeric field. Decimal columns arrive as strings
// ("2000.00"); missing, null and non-numeric values decode to zero.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	raw, ok := decodeLoose(data)
	if !ok {
		*n = 0
		return nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

// Float returns the value as float64.
func (n Number) Float() float64 { return float64(n) }

// String renders the value for form inputs, without trailing zeros.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// ParseNumber parses a form value, accepting a decimal comma.
func ParseNumber(s string) (Number, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, false
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, false
	}
	return Number(v), true
}

const (
	dateLayout  = "2006-01-02"
	stampLayout = "2006-01-02 15:04:05"
)

var looseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	stampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	dateLayout,
}

// Date is a calendar date encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	d.Time = parseLoose(data)
	return nil
}

// String renders the date for tables and form inputs.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// ParseDate parses a form value.
func ParseDate(s string) Date {
	return Date{Time: parseString(s)}
}

// Stamp is a point in time encoded as "YYYY-MM-DD hh:mm:ss".
type Stamp struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (s Stamp) MarshalJSON() ([]byte, error) {
	if s.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(s.Format(stampLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Stamp) UnmarshalJSON(data []byte) error {
	s.Time = parseLoose(data)
	return nil
}

// String renders the timestamp for tables.
func (s Stamp) String() string {
	if s.IsZero() {
		return ""
	}
	return s.Format("2006-01-02 15:04")
}

// ParseStamp parses a form value (datetime-local or the wire layout).
func ParseStamp(s string) Stamp {
	return Stamp{Time: parseString(s)}
}

func decodeLoose(data []byte) (any, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, false
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, false
		}
		return s, true
	}
	return raw, true
}

func parseLoose(data []byte) time.Time {
	raw, ok := decodeLoose(data)
	if !ok {
		return time.Time{}
	}
	s, ok := raw.(string)
	if !ok {
		return time.Time{}
	}
	return parseString(s)
}

func parseString(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range looseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
