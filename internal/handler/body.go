package handler

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/deppfellow/user-service/internal/model"
)

// textField decodes a string attribute leniently. Numbers and booleans
// become their literal text; objects and arrays are kept as decoded and
// left for the store to reject.
type textField struct {
	model.Optional
}

func (f *textField) UnmarshalJSON(data []byte) error {
	v, err := decodeValue(data)
	if err != nil {
		return err
	}

	switch t := v.(type) {
	case json.Number:
		v = t.String()
	case bool:
		v = strconv.FormatBool(t)
	}

	f.Optional = model.Set(v)
	return nil
}

// intField decodes an integer attribute leniently. Numeric strings and
// integral floats become int64; anything else is kept as decoded and left
// for the store to reject.
type intField struct {
	model.Optional
}

func (f *intField) UnmarshalJSON(data []byte) error {
	v, err := decodeValue(data)
	if err != nil {
		return err
	}

	switch t := v.(type) {
	case json.Number:
		if n, ok := parseInteger(t.String()); ok {
			v = n
		} else if fl, err := t.Float64(); err == nil {
			v = fl
		}
	case string:
		if n, ok := parseInteger(strings.TrimSpace(t)); ok {
			v = n
		}
	}

	f.Optional = model.Set(v)
	return nil
}

func decodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func parseInteger(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
