// Package validation provides plausibility checks for Solarmax response frames and decoded telemetry.
package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/resident-x/go-solarmax/internal/protocol"
	"github.com/rs/zerolog"
)

// ValidationLevel defines the strictness of validation rules.
type ValidationLevel int

const (
	ValidationLevelBasic ValidationLevel = iota
	ValidationLevelStandard
	ValidationLevelStrict
)

// String returns the string representation of the validation level.
func (vl ValidationLevel) String() string {
	switch vl {
	case ValidationLevelBasic:
		return "basic"
	case ValidationLevelStandard:
		return "standard"
	case ValidationLevelStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseLevel converts a configuration string into a ValidationLevel.
func ParseLevel(s string) (ValidationLevel, error) {
	switch strings.ToLower(s) {
	case "basic":
		return ValidationLevelBasic, nil
	case "", "standard":
		return ValidationLevelStandard, nil
	case "strict":
		return ValidationLevelStrict, nil
	default:
		return ValidationLevelBasic, fmt.Errorf("unknown validation level %q", s)
	}
}

// Severities used by the default rules.
const (
	SeverityCritical = "critical"
	SeverityError    = "error"
	SeverityWarning  = "warning"
)

// ValidationError represents a validation finding with severity and context.
type ValidationError struct {
	Type     string
	Severity string
	Message  string
	Field    string
	Value    interface{}
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("%s validation error in %s: %s", ve.Severity, ve.Field, ve.Message)
}

// ValidationResult contains the result of a validation check.
type ValidationResult struct {
	Valid      bool
	Errors     []*ValidationError
	Warnings   []*ValidationError
	Confidence float64 // 0.0-1.0 confidence in data integrity
}

func newResult() *ValidationResult {
	return &ValidationResult{
		Valid:      true,
		Errors:     make([]*ValidationError, 0),
		Warnings:   make([]*ValidationError, 0),
		Confidence: 1.0,
	}
}

// HasCriticalErrors returns true if there are any critical validation errors.
func (vr *ValidationResult) HasCriticalErrors() bool {
	for _, err := range vr.Errors {
		if err.Severity == SeverityCritical || err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if there are any validation warnings.
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// Summary returns a summary of the validation result.
func (vr *ValidationResult) Summary() string {
	if vr.Valid && !vr.HasWarnings() {
		return fmt.Sprintf("Valid (confidence: %.2f)", vr.Confidence)
	}

	var parts []string
	if !vr.Valid {
		parts = append(parts, fmt.Sprintf("%d errors", len(vr.Errors)))
	}
	if vr.HasWarnings() {
		parts = append(parts, fmt.Sprintf("%d warnings", len(vr.Warnings)))
	}

	return fmt.Sprintf("%s (confidence: %.2f)", strings.Join(parts, ", "), vr.Confidence)
}

// FrameRule checks a raw response frame.
type FrameRule struct {
	Name  string
	Level ValidationLevel
	Check func(frame string) *ValidationError
}

// DataRule checks a decoded snapshot.
type DataRule struct {
	Name  string
	Level ValidationLevel
	Check func(snapshot domain.DataSnapshot) *ValidationError
}

// Validator applies frame and data rules up to its configured level.
type Validator struct {
	level      ValidationLevel
	frameRules []*FrameRule
	dataRules  []*DataRule
	logger     zerolog.Logger

	stats domain.ValidationStats
	mutex sync.Mutex
}

// NewValidator creates a validator with the default rule set.
func NewValidator(level ValidationLevel, logger zerolog.Logger) *Validator {
	v := &Validator{
		level:      level,
		frameRules: defaultFrameRules(),
		dataRules:  defaultDataRules(),
		logger:     logger.With().Str("component", "validator").Logger(),
	}
	return v
}

// ValidateFrame checks the structure and integrity of a response frame.
func (v *Validator) ValidateFrame(frame string) *ValidationResult {
	result := newResult()

	v.mutex.Lock()
	defer v.mutex.Unlock()

	v.stats.ValidationsPerformed++
	for _, rule := range v.frameRules {
		if rule.Level > v.level {
			continue
		}
		if err := rule.Check(frame); err != nil {
			v.addValidationError(result, err)
		}
	}

	v.logger.Debug().
		Int("frame_length", len(frame)).
		Int("errors", len(result.Errors)).
		Int("warnings", len(result.Warnings)).
		Float64("confidence", result.Confidence).
		Msg("Frame validation completed")

	return result
}

// ValidateSnapshot checks decoded values for plausibility.
func (v *Validator) ValidateSnapshot(snapshot domain.DataSnapshot) *ValidationResult {
	result := newResult()

	v.mutex.Lock()
	defer v.mutex.Unlock()

	v.stats.ValidationsPerformed++
	for _, rule := range v.dataRules {
		if rule.Level > v.level {
			continue
		}
		if err := rule.Check(snapshot); err != nil {
			v.addValidationError(result, err)
		}
	}

	return result
}

// addValidationError adds a validation error to the result and updates metrics.
func (v *Validator) addValidationError(result *ValidationResult, err *ValidationError) {
	if err.Severity == SeverityWarning {
		result.Warnings = append(result.Warnings, err)
		v.stats.WarningsFound++
		result.Confidence *= 0.95
		return
	}

	result.Errors = append(result.Errors, err)
	v.stats.ErrorsFound++
	result.Valid = false

	switch err.Severity {
	case SeverityCritical:
		result.Confidence *= 0.1
	case SeverityError:
		result.Confidence *= 0.5
	}
}

// GetStatistics returns validation statistics.
func (v *Validator) GetStatistics() domain.ValidationStats {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	stats := v.stats
	stats.Level = v.level.String()
	return stats
}

const maxFrameLength = 1024

func defaultFrameRules() []*FrameRule {
	return []*FrameRule{
		{
			Name:  "frame_delimiters",
			Level: ValidationLevelBasic,
			Check: func(frame string) *ValidationError {
				if !strings.HasPrefix(frame, "{") || !strings.HasSuffix(frame, "}") {
					return &ValidationError{
						Type:     "protocol",
						Severity: SeverityCritical,
						Message:  "frame is not enclosed in braces",
						Field:    "frame",
						Value:    frame,
					}
				}
				return nil
			},
		},
		{
			Name:  "frame_size",
			Level: ValidationLevelBasic,
			Check: func(frame string) *ValidationError {
				if len(frame) > maxFrameLength {
					return &ValidationError{
						Type:     "protocol",
						Severity: SeverityWarning,
						Message:  fmt.Sprintf("unusually large frame: %d bytes", len(frame)),
						Field:    "frame_size",
						Value:    len(frame),
					}
				}
				return nil
			},
		},
		{
			Name:  "payload_decodable",
			Level: ValidationLevelBasic,
			Check: func(frame string) *ValidationError {
				if err := protocol.ValidateResponse(frame); err != nil {
					return &ValidationError{
						Type:     "protocol",
						Severity: SeverityCritical,
						Message:  err.Error(),
						Field:    "payload",
						Value:    frame,
					}
				}
				return nil
			},
		},
		{
			Name:  "frame_integrity",
			Level: ValidationLevelStandard,
			Check: func(frame string) *ValidationError {
				if _, err := protocol.ParseFrame(frame); err != nil {
					return &ValidationError{
						Type:     "integrity",
						Severity: SeverityError,
						Message:  err.Error(),
						Field:    "checksum",
						Value:    frame,
					}
				}
				return nil
			},
		},
		{
			Name:  "frame_addressing",
			Level: ValidationLevelStrict,
			Check: func(frame string) *ValidationError {
				f, err := protocol.ParseFrame(frame)
				if err != nil {
					return nil
				}
				if f.Source != protocol.InverterAddress || f.Destination != protocol.RequestSource {
					return &ValidationError{
						Type:     "protocol",
						Severity: SeverityWarning,
						Message:  fmt.Sprintf("unexpected addressing %s->%s", f.Source, f.Destination),
						Field:    "header",
						Value:    f.Source + ";" + f.Destination,
					}
				}
				return nil
			},
		},
	}
}

func defaultDataRules() []*DataRule {
	return []*DataRule{
		{
			Name:  "ac_power_range",
			Level: ValidationLevelBasic,
			Check: func(s domain.DataSnapshot) *ValidationError {
				pac, ok := s.Value(domain.FieldPAC)
				if ok && pac > 100000 {
					return &ValidationError{
						Type:     "data_integrity",
						Severity: SeverityWarning,
						Message:  "unusually high AC power",
						Field:    string(domain.FieldPAC),
						Value:    pac,
					}
				}
				return nil
			},
		},
		{
			Name:  "grid_voltage_range",
			Level: ValidationLevelStandard,
			Check: func(s domain.DataSnapshot) *ValidationError {
				for _, field := range []domain.FieldCode{domain.FieldUL1, domain.FieldUL2, domain.FieldUL3} {
					u, ok := s.Value(field)
					if !ok || u == 0 {
						continue
					}
					if u < 150 || u > 280 {
						return &ValidationError{
							Type:     "data_integrity",
							Severity: SeverityWarning,
							Message:  fmt.Sprintf("grid voltage %.1f V outside 150-280 V", u),
							Field:    string(field),
							Value:    u,
						}
					}
				}
				return nil
			},
		},
		{
			Name:  "temperature_range",
			Level: ValidationLevelStandard,
			Check: func(s domain.DataSnapshot) *ValidationError {
				t, ok := s.Value(domain.FieldTKK)
				if ok && t > 90 {
					return &ValidationError{
						Type:     "data_integrity",
						Severity: SeverityWarning,
						Message:  fmt.Sprintf("inverter temperature %.0f °C above 90 °C", t),
						Field:    string(domain.FieldTKK),
						Value:    t,
					}
				}
				return nil
			},
		},
		{
			Name:  "energy_counter_order",
			Level: ValidationLevelStrict,
			Check: func(s domain.DataSnapshot) *ValidationError {
				month, okMonth := s.Value(domain.FieldKMT)
				year, okYear := s.Value(domain.FieldKYR)
				total, okTotal := s.Value(domain.FieldKT0)
				if okMonth && okYear && month > year {
					return &ValidationError{
						Type:     "data_integrity",
						Severity: SeverityWarning,
						Message:  "monthly energy exceeds yearly energy",
						Field:    string(domain.FieldKMT),
						Value:    month,
					}
				}
				if okYear && okTotal && year > total {
					return &ValidationError{
						Type:     "data_integrity",
						Severity: SeverityWarning,
						Message:  "yearly energy exceeds total energy",
						Field:    string(domain.FieldKYR),
						Value:    year,
					}
				}
				return nil
			},
		},
	}
}
