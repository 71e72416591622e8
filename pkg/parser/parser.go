// pkg/parser/parser.go
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/NivBraz/topworkplaces/internal/models"
)

// ErrMalformed is returned when a response body is not usable JSON of the
// expected shape.
var ErrMalformed = errors.New("malformed response")

// EnvelopeKind tells where the payload was found.
type EnvelopeKind int

const (
	EnvelopeBare EnvelopeKind = iota
	EnvelopeData
)

func (k EnvelopeKind) String() string {
	if k == EnvelopeData {
		return "data"
	}
	return "bare"
}

// Envelope is the normalized form of an API response body.
type Envelope struct {
	Kind    EnvelopeKind
	Payload json.RawMessage
}

// IsNull reports whether the payload is absent or JSON null.
func (e Envelope) IsNull() bool {
	return len(e.Payload) == 0 || bytes.Equal(e.Payload, []byte("null"))
}

// Unwrap accepts either a bare payload or one wrapped as {"data": ...}.
// A "data" key holding null yields a null payload.
func Unwrap(body []byte) (Envelope, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty body", ErrMalformed)
	}
	if !json.Valid(body) {
		return Envelope{}, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	if body[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if data, ok := wrapper["data"]; ok {
			return Envelope{Kind: EnvelopeData, Payload: data}, nil
		}
	}

	return Envelope{Kind: EnvelopeBare, Payload: body}, nil
}

// ParseShifts extracts the shift list. A null payload yields a nil slice.
func ParseShifts(body []byte) ([]models.Shift, error) {
	env, err := Unwrap(body)
	if err != nil {
		return nil, err
	}
	if env.IsNull() {
		return nil, nil
	}
	if env.Payload[0] != '[' {
		return nil, fmt.Errorf("%w: expected shift array in %s payload", ErrMalformed, env.Kind)
	}

	var shifts []models.Shift
	if err := json.Unmarshal(env.Payload, &shifts); err != nil {
		return nil, fmt.Errorf("%w: decoding shifts: %v", ErrMalformed, err)
	}
	return shifts, nil
}

// ParseWorkplace extracts a single workplace. A null payload yields the zero
// Workplace, which callers treat as having no name.
func ParseWorkplace(body []byte) (models.Workplace, error) {
	env, err := Unwrap(body)
	if err != nil {
		return models.Workplace{}, err
	}
	if env.IsNull() {
		return models.Workplace{}, nil
	}
	if env.Payload[0] != '{' {
		return models.Workplace{}, fmt.Errorf("%w: expected workplace object in %s payload", ErrMalformed, env.Kind)
	}

	var wp models.Workplace
	if err := json.Unmarshal(env.Payload, &wp); err != nil {
		return models.Workplace{}, fmt.Errorf("%w: decoding workplace: %v", ErrMalformed, err)
	}
	return wp, nil
}

// SortWorkplaceCounts sorts by count (descending) and by workplace id for ties
func SortWorkplaceCounts(counts []models.WorkplaceCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count == counts[j].Count {
			return counts[i].WorkplaceID < counts[j].WorkplaceID
		}
		return counts[i].Count > counts[j].Count
	})
}
