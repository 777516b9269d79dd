package phone

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/FocuswithJustin/GlobalPhone/core/errors"
)

// Decoder turns database text into the list of region records.
type Decoder interface {
	Decode(text string) ([]any, error)
	DecodeReader(r io.Reader) ([]any, error)
}

// JSONDecoder decodes JSON database text.
type JSONDecoder struct{}

// Decode implements Decoder.
func (d JSONDecoder) Decode(text string) ([]any, error) {
	return d.DecodeReader(strings.NewReader(text))
}

// DecodeReader implements Decoder.
func (JSONDecoder) DecodeReader(r io.Reader) ([]any, error) {
	var v any
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, apperrors.WrapParse("JSON", "", err)
	}
	return topLevel(v)
}

// YAMLDecoder decodes YAML database text.
type YAMLDecoder struct{}

// Decode implements Decoder.
func (d YAMLDecoder) Decode(text string) ([]any, error) {
	return d.DecodeReader(strings.NewReader(text))
}

// DecodeReader implements Decoder.
func (YAMLDecoder) DecodeReader(r io.Reader) ([]any, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		return nil, apperrors.WrapParse("YAML", "", err)
	}
	return topLevel(v)
}

// DecoderFor returns the decoder registered under name ("json" or "yaml").
func DecoderFor(name string) (Decoder, error) {
	switch strings.ToLower(name) {
	case "json", "":
		return JSONDecoder{}, nil
	case "yaml", "yml":
		return YAMLDecoder{}, nil
	}
	return nil, apperrors.NewUnsupported("decoder", name)
}

func topLevel(v any) ([]any, error) {
	records, ok := v.([]any)
	if !ok {
		return nil, &apperrors.DecodeError{Index: -1, Message: fmt.Sprintf("expected a sequence of regions, got %T", v)}
	}
	return records, nil
}
