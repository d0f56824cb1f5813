// Package engine implements the tram policy simulation.
//
// A simulation is a pure function of the policy parameters and the station dataset.
// It runs in three passes:
//
//  1. Budget pass - the total operating budget is the fixed base, plus the cost of
//     running trams more often than the interval ceiling, minus the saving from
//     cutting parallel bus service.
//
//  2. Station pass - every station projects its daily demand (base boardings, diverted
//     bus riders, time-of-day and land-use weighting) against the hourly capacity
//     left after weather and signal priority, and derives a peak-hour congestion
//     percentage clamped to the congestion cap.
//
//  3. Summary pass - the clamped station values are averaged and combined with the
//     bus reduction into a complaint score, then tagged for the dashboard.
package engine

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/cxd309/tram-policy/internal/policy"
	"github.com/cxd309/tram-policy/internal/station"
)

var validate = validator.New()

// Model runs simulations against a fixed calibration.
type Model struct {
	Cal Calibration
}

// New returns a Model with the given calibration after validating it.
func New(cal Calibration) (Model, error) {
	if err := validate.Struct(cal); err != nil {
		return Model{}, fmt.Errorf("calibration: %w", err)
	}
	return Model{Cal: cal}, nil
}

// Default returns a Model using DefaultCalibration.
func Default() Model {
	return Model{Cal: DefaultCalibration()}
}

// Simulate runs the default model.
func Simulate(params policy.Params, stations []station.Station) (Result, error) {
	return Default().Simulate(params, stations)
}

// Simulate projects budget, congestion and complaints for params over stations.
// Parameters are validated before the dataset is inspected; an empty dataset yields the
// NotReady sentinel and no error.
func (m Model) Simulate(params policy.Params, stations []station.Station) (Result, error) {
	if err := params.Validate(); err != nil {
		return Result{}, err
	}
	if len(stations) == 0 {
		return NotReady(), nil
	}
	for _, s := range stations {
		if err := s.Validate(); err != nil {
			return Result{}, fmt.Errorf("station %d: %w", s.ID, policy.Describe(err))
		}
	}

	cal := m.Cal
	interval := params.DispatchIntervalMinutes
	reduction := params.BusReductionPercent

	// budget pass
	tramCost := (cal.IntervalCeiling - interval) * cal.TramCostPerMinute
	busSaving := reduction * cal.BusSavingPerPercent
	total := cal.BaseBudget + tramCost - busSaving
	delta := total - cal.BaseBudget
	changePct := delta / cal.BaseBudget * 100

	// station pass
	effInterval := m.effectiveInterval(params)
	capacity := cal.CapacityPerVehicle * 60 / effInterval * m.signalGain(params.Signal())

	slot := params.Slot()
	perStation := make([]StationResult, 0, len(stations))
	sum := 0.0
	for _, s := range stations {
		sr := m.station(s, reduction, interval, slot, capacity)
		perStation = append(perStation, sr)
		sum += sr.CongestionPercent
	}

	// summary pass
	avg := sum / float64(len(stations))
	complaint := clamp(cal.ComplaintBusWeight*reduction+cal.ComplaintOverloadWeight*math.Max(0, avg-100), 0, 100)

	hourly := make([]HourlyPoint, 0, len(hourlyProfile))
	for _, h := range hourlyProfile {
		hourly = append(hourly, HourlyPoint{Hour: h.hour, CongestionPercent: clamp(avg*h.factor, 0, cal.CongestionCap)})
	}

	return Result{
		Ready:                    true,
		BudgetTotal:              total,
		BudgetDelta:              delta,
		BudgetChangePercent:      changePct,
		AverageCongestionPercent: avg,
		ComplaintScore:           complaint,
		ComplaintRisk:            riskLevel(complaint),
		CongestionBand:           congestionBand(avg),
		BudgetTag:                budgetTag(delta, changePct),
		Strategy:                 strategy(changePct, avg),
		Message:                  message(params, avg),
		EffectiveInterval:        effInterval,
		CapacityPerHour:          capacity,
		Hourly:                   hourly,
		PerStation:               perStation,
	}, nil
}

func (m Model) station(s station.Station, reduction, interval float64, slot policy.TimeSlot, capacity float64) StationResult {
	cal := m.Cal
	diverted := s.BasePassengers * reduction / 100 * cal.DiversionRate
	demand := (s.BasePassengers + diverted) * m.slotMultiplier(slot) * m.zoneMultiplier(s.Zone, slot)
	if interval < cal.InducedDemandBelow {
		demand *= cal.InducedDemandFactor
	}

	raw := demand * cal.PeakFraction / capacity * 100
	if s.IsShared {
		raw *= cal.SharedPenalty
	}
	return StationResult{
		StationID:                  s.ID,
		CongestionPercent:          clamp(raw, 0, cal.CongestionCap),
		UnclampedCongestionPercent: raw,
		ProjectedPassengers:        demand,
		DivertedPassengers:         diverted,
	}
}

// effectiveInterval stretches the dispatch interval for bad weather. Sunny weather, or
// any weather at zero intensity, leaves it unchanged.
func (m Model) effectiveInterval(p policy.Params) float64 {
	var severity float64
	switch p.Weather.Condition() {
	case policy.WeatherRain:
		severity = m.Cal.RainSeverity
	case policy.WeatherSnow:
		severity = m.Cal.SnowSeverity
	}
	return p.DispatchIntervalMinutes * (1 + severity*p.Weather.Intensity/100)
}

func (m Model) signalGain(sp policy.SignalPriority) float64 {
	switch sp {
	case policy.SignalTramPriority:
		return m.Cal.PriorityGain
	case policy.SignalAbsolute:
		return m.Cal.AbsoluteGain
	default:
		return 1
	}
}

func (m Model) slotMultiplier(slot policy.TimeSlot) float64 {
	switch slot {
	case policy.TimeSlotMorning:
		return m.Cal.MorningDemand
	case policy.TimeSlotEvening:
		return m.Cal.EveningDemand
	default:
		return 1
	}
}

// zoneMultiplier weights demand by land use. Stations without zone metadata are neutral.
func (m Model) zoneMultiplier(z *station.Zone, slot policy.TimeSlot) float64 {
	if z == nil {
		return 1
	}
	mult := 1.0
	switch {
	case slot == policy.TimeSlotMorning && z.Type == station.ZoneResidential:
		mult *= m.Cal.PeakZoneBoost
	case slot == policy.TimeSlotEvening && (z.Type == station.ZoneCommercial || z.Type == station.ZoneOffice):
		mult *= m.Cal.PeakZoneBoost
	}
	if z.CommercialScore != nil {
		mult *= 1 + m.Cal.CommercialWeight*(*z.CommercialScore)/100
	}
	return mult
}

func riskLevel(complaint float64) RiskLevel {
	switch {
	case complaint < 15:
		return RiskLow
	case complaint < 30:
		return RiskModerate
	case complaint < 50:
		return RiskHigh
	default:
		return RiskSevere
	}
}

func congestionBand(avg float64) CongestionBand {
	switch {
	case avg < 60:
		return BandSpare
	case avg < 90:
		return BandBalanced
	case avg < 110:
		return BandCaution
	default:
		return BandOvercrowded
	}
}

func budgetTag(delta, changePct float64) BudgetTag {
	switch {
	case delta < 0:
		return BudgetSaving
	case changePct < 10:
		return BudgetSlightIncrease
	default:
		return BudgetBurden
	}
}

func strategy(changePct, avg float64) Strategy {
	budgetOK := changePct <= 15
	serviceOK := avg >= 70 && avg <= 105
	switch {
	case budgetOK && serviceOK:
		return StrategyBalanced
	case serviceOK:
		return StrategyServiceFirst
	case budgetOK:
		return StrategyBudgetFirst
	default:
		return StrategyNeedsAdjustment
	}
}

func message(p policy.Params, avg float64) string {
	switch {
	case p.BusReductionPercent >= 30:
		return fmt.Sprintf("a %.0f%% bus cut is likely to flood transfer complaints", p.BusReductionPercent)
	case avg >= 120:
		return fmt.Sprintf("tram capacity exceeded at %.0f%% average congestion; passengers will be left behind", avg)
	case p.DispatchIntervalMinutes > 12:
		return fmt.Sprintf("a %.0f minute interval will draw waiting-time complaints", p.DispatchIntervalMinutes)
	default:
		return "within normal operating range"
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
