package policy

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
		field   string
	}{
		{name: "minimal valid", params: Params{DispatchIntervalMinutes: 6}},
		{
			name: "all modifiers",
			params: Params{
				DispatchIntervalMinutes: 3,
				BusReductionPercent:     50,
				SignalPriority:          SignalAbsolute,
				Weather:                 Weather{Kind: WeatherSnow, Intensity: 100},
				TimeSlot:                TimeSlotEvening,
			},
		},
		{name: "zero interval", params: Params{}, wantErr: true, field: "DispatchIntervalMinutes"},
		{name: "negative interval", params: Params{DispatchIntervalMinutes: -2}, wantErr: true, field: "DispatchIntervalMinutes"},
		{name: "negative bus cut", params: Params{DispatchIntervalMinutes: 6, BusReductionPercent: -5}, wantErr: true, field: "BusReductionPercent"},
		{name: "bus cut above range", params: Params{DispatchIntervalMinutes: 6, BusReductionPercent: 55}, wantErr: true, field: "BusReductionPercent"},
		{name: "intensity above range", params: Params{DispatchIntervalMinutes: 6, Weather: Weather{Kind: WeatherRain, Intensity: 120}}, wantErr: true, field: "Intensity"},
		{name: "unknown weather", params: Params{DispatchIntervalMinutes: 6, Weather: Weather{Kind: "hail"}}, wantErr: true, field: "Kind"},
		{name: "unknown signal", params: Params{DispatchIntervalMinutes: 6, SignalPriority: "green-wave"}, wantErr: true, field: "SignalPriority"},
		{name: "unknown slot", params: Params{DispatchIntervalMinutes: 6, TimeSlot: "night"}, wantErr: true, field: "TimeSlot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error, got nil")
			}
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("error %v does not wrap ErrInvalidParameter", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name field %s", err, tt.field)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	var p Params
	if p.Signal() != SignalBalanced {
		t.Errorf("expected balanced signal, got %s", p.Signal())
	}
	if p.Slot() != TimeSlotDay {
		t.Errorf("expected day slot, got %s", p.Slot())
	}
	if p.Weather.Condition() != WeatherSunny {
		t.Errorf("expected sunny weather, got %s", p.Weather.Condition())
	}
}

func TestMerge(t *testing.T) {
	base := Params{DispatchIntervalMinutes: 8, BusReductionPercent: 10}
	snow := Weather{Kind: WeatherSnow, Intensity: 40}
	slot := TimeSlotMorning

	got := base.Merge(Partial{Weather: &snow, TimeSlot: &slot})
	if got.DispatchIntervalMinutes != 8 || got.BusReductionPercent != 10 {
		t.Errorf("merge overwrote unset fields: %+v", got)
	}
	if got.Weather != snow || got.TimeSlot != slot {
		t.Errorf("merge did not apply fixed fields: %+v", got)
	}

	interval := 5.0
	if got := base.Merge(Partial{DispatchIntervalMinutes: &interval}); got.DispatchIntervalMinutes != 5 {
		t.Errorf("expected interval 5, got %v", got.DispatchIntervalMinutes)
	}
}
