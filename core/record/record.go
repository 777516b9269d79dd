// Package record reads database records that come in one of two physical
// shapes: a positional sequence ([]any) or a name-keyed mapping
// (map[string]any). Every lookup names both the position and the key, so
// callers read fields the same way regardless of which shape was decoded.
package record

import (
	"fmt"

	"github.com/FocuswithJustin/GlobalPhone/core/errors"
)

// Key identifies one field by its position in a positional record and its
// name in a name-keyed record.
type Key struct {
	Index int
	Name  string
}

func (k Key) String() string {
	return fmt.Sprintf("%s(%d)", k.Name, k.Index)
}

// Record is a read-only view over one decoded record.
type Record struct {
	seq        []any
	named      map[string]any
	positional bool
}

// New wraps a decoded value. It accepts []any, map[string]any or an existing
// Record; anything else is a decode error.
func New(v any) (Record, error) {
	switch data := v.(type) {
	case Record:
		return data, nil
	case []any:
		return Record{seq: data, positional: true}, nil
	case map[string]any:
		return Record{named: data}, nil
	default:
		return Record{}, &errors.DecodeError{
			Index:   -1,
			Message: fmt.Sprintf("expected sequence or mapping, got %T", v),
		}
	}
}

// Positional reports whether the record is the positional shape.
func (r Record) Positional() bool {
	return r.positional
}

// Lookup returns the raw value for k. Absent and null values both report
// false.
func (r Record) Lookup(k Key) (any, bool) {
	var v any
	if r.positional {
		if k.Index < 0 || k.Index >= len(r.seq) {
			return nil, false
		}
		v = r.seq[k.Index]
	} else {
		var ok bool
		if v, ok = r.named[k.Name]; !ok {
			return nil, false
		}
	}
	return v, v != nil
}

// fail tags an error with the position or name of k, whichever the record
// uses.
func (r Record) fail(k Key, message string, err error) error {
	if r.positional {
		return errors.NewDecodeIndex(k.Index, message, err)
	}
	return errors.NewDecodeColumn(k.Name, message, err)
}

func typeName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", any(zero))
}

// Field returns the value of k as T, or fallback when it is absent.
func Field[T any](r Record, k Key, fallback T) (T, error) {
	v, ok := r.Lookup(k)
	if !ok {
		return fallback, nil
	}
	t, ok := v.(T)
	if !ok {
		return fallback, r.fail(k, fmt.Sprintf("expected %s, got %T", typeName[T](), v), nil)
	}
	return t, nil
}

// FieldFunc returns project applied to the value of k, or the zero R when it
// is absent.
func FieldFunc[T, R any](r Record, k Key, project func(T) (R, error)) (R, error) {
	var zero R
	v, ok := r.Lookup(k)
	if !ok {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, r.fail(k, fmt.Sprintf("expected %s, got %T", typeName[T](), v), nil)
	}
	out, err := project(t)
	if err != nil {
		return zero, r.fail(k, "", err)
	}
	return out, nil
}

// FieldArray returns project applied to every element of the sequence at k.
// A lone scalar is treated as a one-element sequence, since compaction
// collapses single-child collections. Absent fields yield an empty slice.
func FieldArray[T, R any](r Record, k Key, project func(T) (R, error)) ([]R, error) {
	v, ok := r.Lookup(k)
	if !ok {
		return []R{}, nil
	}

	items, isSeq := v.([]any)
	if !isSeq {
		items = []any{v}
	}

	out := make([]R, 0, len(items))
	for i, item := range items {
		t, ok := item.(T)
		if !ok {
			return nil, r.fail(k, fmt.Sprintf("element %d: expected %s, got %T", i, typeName[T](), item), nil)
		}
		projected, err := project(t)
		if err != nil {
			return nil, r.fail(k, fmt.Sprintf("element %d", i), err)
		}
		out = append(out, projected)
	}
	return out, nil
}

// Identity is a projection that returns its input unchanged.
func Identity[T any](v T) (T, error) {
	return v, nil
}

// Encode builds a record from values given in positional order. The
// positional shape drops trailing nil values and keeps interior ones as null;
// the name-keyed shape omits every nil value.
func Encode(keys []Key, values []any, positional bool) any {
	if positional {
		end := len(values)
		for end > 0 && values[end-1] == nil {
			end--
		}
		out := make([]any, end)
		copy(out, values[:end])
		return out
	}

	out := make(map[string]any, len(values))
	for i, v := range values {
		if v == nil || i >= len(keys) {
			continue
		}
		out[keys[i].Name] = v
	}
	return out
}
