package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/variant-reports-service/internal/domain"
)

const (
	msgRequired = "This field is required."
	msgString   = "Not a valid string."
	msgInteger  = "A valid integer is required."
	msgNumber   = "A valid number is required."
	msgDate     = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgUUID     = "Must be a valid UUID."
)

// reader pulls typed fields out of a payload, recording type errors as it goes.
// A missing or null field yields the zero value and no error; struct-tag
// validation reports it as required afterwards.
type reader struct {
	payload Payload
	errs    *domain.ValidationErrors
}

func newReader(p Payload) *reader {
	return &reader{payload: p, errs: domain.NewValidationErrors()}
}

func (r *reader) lookup(field string) (any, bool) {
	value, ok := r.payload[field]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

func (r *reader) string(field string) string {
	value, ok := r.lookup(field)
	if !ok {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		r.errs.Add(field, msgString)
		return ""
	}
	return s
}

func (r *reader) integer(field string) (int64, bool) {
	value, ok := r.lookup(field)
	if !ok {
		r.errs.Add(field, msgRequired)
		return 0, false
	}

	switch n := value.(type) {
	case json.Number:
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			r.errs.Add(field, msgInteger)
			return 0, false
		}
		return i, true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt64 || n < math.MinInt64 {
			r.errs.Add(field, msgInteger)
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		r.errs.Add(field, msgInteger)
		return 0, false
	}
}

func (r *reader) uuid(field string) uuid.UUID {
	value, ok := r.lookup(field)
	if !ok {
		return uuid.Nil
	}
	s, ok := value.(string)
	if !ok {
		r.errs.Add(field, msgUUID)
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		r.errs.Add(field, msgUUID)
		return uuid.Nil
	}
	return id
}

func (r *reader) date(field string) domain.Date {
	value, ok := r.lookup(field)
	if !ok {
		return domain.Date{}
	}
	s, ok := value.(string)
	if !ok {
		r.errs.Add(field, msgDate)
		return domain.Date{}
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		r.errs.Add(field, msgDate)
		return domain.Date{}
	}
	return d
}

// alleleFrequency reads a decimal number and keeps its literal precision
func (r *reader) alleleFrequency(field string) (domain.AlleleFrequency, bool) {
	value, ok := r.lookup(field)
	if !ok {
		r.errs.Add(field, msgRequired)
		return 0, false
	}

	var literal string
	switch n := value.(type) {
	case json.Number:
		literal = n.String()
	case float64:
		literal = strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		literal = strconv.Itoa(n)
	case int64:
		literal = strconv.FormatInt(n, 10)
	default:
		r.errs.Add(field, msgNumber)
		return 0, false
	}

	freq, err := domain.ParseAlleleFrequency(literal)
	switch {
	case err == nil:
		return freq, true
	case errors.Is(err, domain.ErrAlleleFrequencyRange):
		if strings.HasPrefix(literal, "-") {
			r.errs.Add(field, "Ensure this value is greater than or equal to 0.")
		} else {
			r.errs.Add(field, "Ensure this value is less than or equal to 1.")
		}
	case errors.Is(err, domain.ErrAlleleFrequencyPrecision):
		r.errs.Add(field, fmt.Sprintf("Ensure that there are no more than %d decimal places.", domain.AlleleFrequencyScale))
	default:
		r.errs.Add(field, msgNumber)
	}
	return 0, false
}
