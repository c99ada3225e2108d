package pages

import (
	"net/url"
	"strings"

	"github.com/sipertani/sipertani/internal/farm"
)

// Field types rendered by the form partial.
const (
	TypeText     = "text"
	TypeNumber   = "number"
	TypeDate     = "date"
	TypeDateTime = "datetime-local"
	TypeSelect   = "select"
	TypePassword = "password"
)

// Field describes one input of the resource form.
type Field struct {
	Name     string
	Label    string
	Type     string
	Options  []Option
	Source   string
	Required bool
	Step     string
	// CreateOnly hides the input when editing (passwords).
	CreateOnly bool
}

// FormReader parses posted values and collects per-field messages.
type FormReader struct {
	values url.Values
	errs   map[string]string
}

// NewFormReader wraps posted values.
func NewFormReader(values url.Values) *FormReader {
	return &FormReader{values: values, errs: map[string]string{}}
}

// Errors returns the collected messages, nil when every field parsed.
func (f *FormReader) Errors() map[string]string {
	if len(f.errs) == 0 {
		return nil
	}
	return f.errs
}

// Fail records message for name unless one is already recorded.
func (f *FormReader) Fail(name, message string) {
	if _, ok := f.errs[name]; !ok {
		f.errs[name] = message
	}
}

// Text reads a trimmed string.
func (f *FormReader) Text(name, label string, required bool) string {
	v := strings.TrimSpace(f.values.Get(name))
	if v == "" && required {
		f.Fail(name, label+" wajib diisi")
	}
	return v
}

// Number reads a decimal, accepting a comma separator.
func (f *FormReader) Number(name, label string, required bool) farm.Number {
	raw := strings.TrimSpace(f.values.Get(name))
	if raw == "" {
		if required {
			f.Fail(name, label+" wajib diisi")
		}
		return 0
	}
	n, ok := farm.ParseNumber(raw)
	if !ok {
		f.Fail(name, label+" harus berupa angka")
		return 0
	}
	if n < 0 {
		f.Fail(name, label+" tidak boleh negatif")
	}
	return n
}

// Positive reads a number that must be greater than zero.
func (f *FormReader) Positive(name, label string) farm.Number {
	n := f.Number(name, label, true)
	if n <= 0 {
		f.Fail(name, label+" harus lebih dari 0")
	}
	return n
}

// ID reads a selected identifier.
func (f *FormReader) ID(name, label string, required bool) farm.ID {
	id := farm.ParseID(f.values.Get(name))
	if id == 0 && required {
		f.Fail(name, label+" wajib dipilih")
	}
	return id
}

// Date reads a yyyy-mm-dd date.
func (f *FormReader) Date(name, label string, required bool) farm.Date {
	raw := strings.TrimSpace(f.values.Get(name))
	d := farm.ParseDate(raw)
	if d.IsZero() {
		switch {
		case raw != "":
			f.Fail(name, label+" tidak valid")
		case required:
			f.Fail(name, label+" wajib diisi")
		}
	}
	return d
}

// Stamp reads a date and time.
func (f *FormReader) Stamp(name, label string, required bool) farm.Stamp {
	raw := strings.TrimSpace(f.values.Get(name))
	s := farm.ParseStamp(raw)
	if s.IsZero() {
		switch {
		case raw != "":
			f.Fail(name, label+" tidak valid")
		case required:
			f.Fail(name, label+" wajib diisi")
		}
	}
	return s
}

// OneOf reads a value restricted to choices.
func OneOf[S ~string](f *FormReader, name, label string, choices ...S) S {
	v := S(strings.TrimSpace(f.values.Get(name)))
	for _, c := range choices {
		if v == c {
			return v
		}
	}
	f.Fail(name, label+" tidak valid")
	return v
}

// Choices builds static options labelled with farm.Label.
func Choices[S ~string](values ...S) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Value: string(v), Label: farm.Label(v)})
	}
	return out
}
