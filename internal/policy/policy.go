// Package policy defines the operating parameters a transit operator adjusts on the
// dashboard, together with their validation rules.
//
// All optional modifiers have a neutral zero value: an empty SignalPriority behaves as
// SignalBalanced, an empty WeatherKind as WeatherSunny and an empty TimeSlot as TimeSlotDay.
package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidParameter marks a caller bug: a parameter outside its documented domain.
// The UI is expected to clamp its controls before calling the engine.
var ErrInvalidParameter = errors.New("invalid parameter")

// SignalPriority is the traffic-signal priority tier granted to trams.
type SignalPriority string

const (
	SignalBalanced     SignalPriority = "balanced"
	SignalTramPriority SignalPriority = "priority"
	SignalAbsolute     SignalPriority = "absolute"
)

// WeatherKind is the prevailing weather condition.
type WeatherKind string

const (
	WeatherSunny WeatherKind = "sunny"
	WeatherRain  WeatherKind = "rain"
	WeatherSnow  WeatherKind = "snow"
)

// TimeSlot is the operating period of the day.
type TimeSlot string

const (
	TimeSlotMorning TimeSlot = "morning"
	TimeSlotDay     TimeSlot = "day"
	TimeSlotEvening TimeSlot = "evening"
)

// Weather describes a weather condition and how strongly it is felt.
type Weather struct {
	Kind      WeatherKind `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=sunny rain snow"`
	Intensity float64     `json:"intensity" yaml:"intensity" validate:"gte=0,lte=100"` // percent
}

// Params is one set of policy parameters supplied per simulation call.
type Params struct {
	DispatchIntervalMinutes float64        `json:"dispatch_interval_minutes" yaml:"dispatchIntervalMinutes" validate:"gt=0"`
	BusReductionPercent     float64        `json:"bus_reduction_percent" yaml:"busReductionPercent" validate:"gte=0,lte=50"`
	SignalPriority          SignalPriority `json:"signal_priority,omitempty" yaml:"signalPriority,omitempty" validate:"omitempty,oneof=balanced priority absolute"`
	Weather                 Weather        `json:"weather" yaml:"weather"`
	TimeSlot                TimeSlot       `json:"time_slot,omitempty" yaml:"timeSlot,omitempty" validate:"omitempty,oneof=morning day evening"`
}

// Partial carries the parameters held fixed during an alternative search. Nil fields
// keep the searched value or the neutral default.
type Partial struct {
	DispatchIntervalMinutes *float64        `json:"dispatch_interval_minutes,omitempty"`
	BusReductionPercent     *float64        `json:"bus_reduction_percent,omitempty"`
	SignalPriority          *SignalPriority `json:"signal_priority,omitempty"`
	Weather                 *Weather        `json:"weather,omitempty"`
	TimeSlot                *TimeSlot       `json:"time_slot,omitempty"`
}

// Merge overlays the non-nil fields of fixed onto p and returns the result.
func (p Params) Merge(fixed Partial) Params {
	if fixed.DispatchIntervalMinutes != nil {
		p.DispatchIntervalMinutes = *fixed.DispatchIntervalMinutes
	}
	if fixed.BusReductionPercent != nil {
		p.BusReductionPercent = *fixed.BusReductionPercent
	}
	if fixed.SignalPriority != nil {
		p.SignalPriority = *fixed.SignalPriority
	}
	if fixed.Weather != nil {
		p.Weather = *fixed.Weather
	}
	if fixed.TimeSlot != nil {
		p.TimeSlot = *fixed.TimeSlot
	}
	return p
}

// Signal returns the signal tier, defaulting to SignalBalanced.
func (p Params) Signal() SignalPriority {
	if p.SignalPriority == "" {
		return SignalBalanced
	}
	return p.SignalPriority
}

// Slot returns the time slot, defaulting to TimeSlotDay.
func (p Params) Slot() TimeSlot {
	if p.TimeSlot == "" {
		return TimeSlotDay
	}
	return p.TimeSlot
}

// Condition returns the weather kind, defaulting to WeatherSunny.
func (w Weather) Condition() WeatherKind {
	if w.Kind == "" {
		return WeatherSunny
	}
	return w.Kind
}

var validate = validator.New()

// Validate reports an error wrapping ErrInvalidParameter when any field lies outside its
// domain.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return Describe(err)
	}
	return nil
}

// Describe converts validator failures into a single ErrInvalidParameter error naming every
// offending field. Errors that are not validation failures are wrapped unchanged.
func Describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s=%v violates %s", fe.Namespace(), fe.Value(), rule))
	}
	return fmt.Errorf("%w: %s", ErrInvalidParameter, strings.Join(parts, "; "))
}
