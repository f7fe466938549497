package types

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the layout of custom range dates
const DateLayout = "2006-01-02"

// ErrInvalidRequest is returned for request specs that must be rejected before any fetch
var ErrInvalidRequest = errors.New("invalid request")

// RequestSpec is the immutable description of one report job
type RequestSpec struct {
	Stations    []string        `json:"stations" validate:"required,min=1,unique,dive,required"`
	Parameters  []ParameterKey  `json:"parameters" validate:"required,min=1,unique,dive,required"`
	RangeMode   RangeMode       `json:"range_mode" validate:"required,oneof=preset custom"`
	Preset      RangePreset     `json:"preset,omitempty" validate:"required_if=RangeMode preset"`
	CustomStart string          `json:"custom_start,omitempty" validate:"required_if=RangeMode custom"`
	CustomEnd   string          `json:"custom_end,omitempty" validate:"required_if=RangeMode custom"`
	Averaging   AveragingPreset `json:"averaging,omitempty"`
	Images      bool            `json:"images"`
	Tables      bool            `json:"tables"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the structural and semantic constraints of the request.
// Every returned error wraps ErrInvalidRequest.
func (r RequestSpec) Validate() error {
	if err := requestValidator().Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	for _, key := range r.Parameters {
		if _, err := LookupParameter(key); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}

	if !r.Averaging.Valid() {
		return fmt.Errorf("%w: unknown averaging preset %q", ErrInvalidRequest, r.Averaging)
	}

	switch r.RangeMode {
	case RangeModePreset:
		if !r.Preset.Valid() {
			return fmt.Errorf("%w: unknown range preset %q", ErrInvalidRequest, r.Preset)
		}
	case RangeModeCustom:
		start, end, err := r.CustomRange()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		if end.Before(start) {
			return fmt.Errorf("%w: custom range ends (%s) before it starts (%s)", ErrInvalidRequest, r.CustomEnd, r.CustomStart)
		}
	}

	return nil
}

// CustomRange parses the custom start and end dates as UTC calendar days
func (r RequestSpec) CustomRange() (start, end time.Time, err error) {
	start, err = time.ParseInLocation(DateLayout, r.CustomStart, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid custom start %q: %w", r.CustomStart, err)
	}
	end, err = time.ParseInLocation(DateLayout, r.CustomEnd, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid custom end %q: %w", r.CustomEnd, err)
	}
	return start, end, nil
}

// RangeLabel describes the requested window for chart titles
func (r RequestSpec) RangeLabel() string {
	if r.RangeMode == RangeModeCustom {
		return fmt.Sprintf("%s to %s", r.CustomStart, r.CustomEnd)
	}
	return r.Preset.Label()
}
