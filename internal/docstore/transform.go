package docstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AlibekovAA/notes/internal/common/constants"
	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
)

const (
	TransformKey             = "$transform"
	TransformServerTimestamp = "serverTimestamp"
)

// Transform is a placeholder value the store replaces on write.
type Transform struct {
	Kind string
}

func ServerTimestamp() Transform {
	return Transform{Kind: TransformServerTimestamp}
}

func (t Transform) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{TransformKey: t.Kind})
}

func asTransform(v any) (string, bool) {
	switch tv := v.(type) {
	case Transform:
		return tv.Kind, true
	case *Transform:
		if tv == nil {
			return "", false
		}
		return tv.Kind, true
	case map[string]any:
		if len(tv) != 1 {
			return "", false
		}
		kind, ok := tv[TransformKey].(string)
		return kind, ok
	}
	return "", false
}

// FormatTime is the stored representation of timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// TimeField reads a stored timestamp. Absent or malformed values yield nil.
func TimeField(fields Fields, name string) *time.Time {
	switch v := fields[name].(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil
		}
		return &t
	case time.Time:
		return &v
	}
	return nil
}

// StringField reads a string field and reports whether it was present.
func StringField(fields Fields, name string) (string, bool) {
	v, ok := fields[name].(string)
	return v, ok
}

// PrepareFields validates field names and resolves transforms against now.
// The input map is not modified.
func PrepareFields(fields Fields, now time.Time) (Fields, error) {
	if len(fields) > constants.MaxDocumentFields {
		return nil, commonerrors.ErrTooManyFields
	}

	out := make(Fields, len(fields))
	for name, value := range fields {
		if err := ValidateName(name); err != nil {
			return nil, err
		}
		if kind, ok := asTransform(value); ok {
			switch kind {
			case TransformServerTimestamp:
				out[name] = FormatTime(now)
			default:
				return nil, commonerrors.ErrInvalidPayload.WithCause(fmt.Errorf("unknown transform %q", kind))
			}
			continue
		}
		out[name] = value
	}
	return out, nil
}

// Encode prepares fields and returns their JSON form.
func Encode(fields Fields, now time.Time) ([]byte, error) {
	prepared, err := PrepareFields(fields, now)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(prepared)
	if err != nil {
		return nil, commonerrors.ErrInvalidPayload.WithCause(err)
	}
	return raw, nil
}

func Decode(raw []byte) (Fields, error) {
	var fields Fields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if fields == nil {
		fields = Fields{}
	}
	return fields, nil
}
