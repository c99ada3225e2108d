package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the canonical response shape. Endpoints that return a bare
// array or object are read as if the value sat under "data".
type Envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// normalize converts any supported body into an Envelope.
func normalize(body []byte) Envelope {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Envelope{}
	}
	switch body[0] {
	case '[':
		return Envelope{Data: body}
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(body, &probe); err != nil {
			return Envelope{}
		}
		env := Envelope{}
		if raw, ok := probe["message"]; ok {
			_ = json.Unmarshal(raw, &env.Message)
		}
		if raw, ok := probe["error"]; ok {
			_ = json.Unmarshal(raw, &env.Error)
		}
		if raw, ok := probe["data"]; ok {
			env.Data = raw
			return env
		}
		// An object without "data" is the record itself unless it only
		// carries message/error fields.
		delete(probe, "message")
		delete(probe, "error")
		delete(probe, "success")
		delete(probe, "status")
		if len(probe) > 0 {
			env.Data = body
		}
		return env
	}
	return Envelope{}
}

// Text returns the server supplied message, preferring error over message.
func (e Envelope) Text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// DecodeList normalises body into an ordered slice. A single object yields a
// one element slice; null or an empty body yields an empty slice.
func DecodeList[T any](body []byte) ([]T, error) {
	env := normalize(body)
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []T{}, nil
	}
	if data[0] == '{' {
		var one T
		if err := json.Unmarshal(data, &one); err != nil {
			return []T{}, fmt.Errorf("backend: decode record: %w", err)
		}
		return []T{one}, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return []T{}, fmt.Errorf("backend: decode list: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// DecodeOne normalises body into a single record.
func DecodeOne[T any](body []byte) (T, error) {
	var out T
	env := normalize(body)
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return out, fmt.Errorf("backend: empty record")
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return out, fmt.Errorf("backend: decode record: %w", err)
		}
		if len(items) == 0 {
			return out, fmt.Errorf("backend: empty record")
		}
		return items[0], nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("backend: decode record: %w", err)
	}
	return out, nil
}
