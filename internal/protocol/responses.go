package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/resident-x/go-solarmax/internal/domain"
)

// statusSuffixSeparator separates the SYS status code from its trailing sub-code.
const statusSuffixSeparator = ","

// ParseError describes why a response frame could not be decoded.
type ParseError struct {
	Reason string
	Input  string
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: %s (%q): %v", e.Reason, e.Input, e.Err)
	}
	return fmt.Sprintf("parse error: %s (%q)", e.Reason, e.Input)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// MapDataValue converts a raw inverter value to its engineering unit.
func MapDataValue(field domain.FieldCode, raw uint64) float64 {
	switch field {
	case domain.FieldPAC, domain.FieldPD01, domain.FieldPD02, domain.FieldPDC:
		return float64(raw) / 2
	case domain.FieldUL1, domain.FieldUL2, domain.FieldUL3, domain.FieldUDC, domain.FieldUD01, domain.FieldUD02:
		return float64(raw) / 10
	case domain.FieldIDC, domain.FieldID01, domain.FieldID02, domain.FieldIL1, domain.FieldIL2, domain.FieldIL3:
		return float64(raw) / 100
	default:
		// SYS and SAL carry codes; everything else is already in its unit.
		return float64(raw)
	}
}

// ParseResponse decodes the FIELD=HEX pairs of a response frame.
//
// Decoding is all or nothing: a malformed frame or value yields an empty
// snapshot, never a partial one. Use ValidateResponse to learn why.
func ParseResponse(response string) domain.DataSnapshot {
	snapshot, err := decodeResponse(response)
	if err != nil {
		return domain.DataSnapshot{}
	}
	return snapshot
}

// ValidateResponse reports whether ParseResponse can decode the response.
func ValidateResponse(response string) error {
	_, err := decodeResponse(response)
	return err
}

func decodeResponse(response string) (domain.DataSnapshot, error) {
	_, afterPort, ok := strings.Cut(response, ":")
	if !ok {
		return nil, &ParseError{Reason: "missing ':' separator", Input: response}
	}

	payload, _, ok := strings.Cut(afterPort, "|")
	if !ok {
		return nil, &ParseError{Reason: "missing '|' terminator", Input: response}
	}

	snapshot := make(domain.DataSnapshot)
	for _, token := range strings.Split(payload, ";") {
		name, valueStr, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}

		field := domain.FieldCode(name)
		if field == domain.FieldSYS {
			valueStr, _, _ = strings.Cut(valueStr, statusSuffixSeparator)
		}

		raw, err := strconv.ParseUint(valueStr, 16, 64)
		if err != nil {
			return nil, &ParseError{Reason: "invalid hex value for " + name, Input: valueStr, Err: err}
		}

		snapshot[field] = domain.ScaledReading{
			Value:    MapDataValue(field, raw),
			RawValue: raw,
		}
	}

	return snapshot, nil
}

// BuildResponse encodes raw values as an inverter response frame.
// Fields missing from values are omitted.
func BuildResponse(fields []domain.FieldCode, values map[domain.FieldCode]uint64) string {
	pairs := make([]string, 0, len(fields))
	for _, f := range fields {
		raw, ok := values[f]
		if !ok {
			continue
		}
		pair := fmt.Sprintf("%s=%X", f, raw)
		if f == domain.FieldSYS {
			pair += statusSuffixSeparator + "0"
		}
		pairs = append(pairs, pair)
	}

	frame := fmt.Sprintf("{%s;%s;%s|%s:%s|%s}",
		InverterAddress, RequestSource, lengthPlaceholder, ReadCommand,
		strings.Join(pairs, ";"), checksumPlaceholder)
	return finalizeFrame(frame)
}
