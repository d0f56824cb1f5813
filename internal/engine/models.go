package engine

// Calibration holds the policy constants of the model. None of them vary per call; a
// dashboard deployment may override them from its configuration file.
type Calibration struct {
	// Budget, in units of 100M KRW. Tram cost is zero at IntervalCeiling minutes and grows
	// by TramCostPerMinute for every minute the interval is shortened.
	BaseBudget          float64 `json:"base_budget" yaml:"baseBudget" validate:"gt=0"`
	IntervalCeiling     float64 `json:"interval_ceiling" yaml:"intervalCeiling" validate:"gt=0"`
	TramCostPerMinute   float64 `json:"tram_cost_per_minute" yaml:"tramCostPerMinute" validate:"gte=0"`
	BusSavingPerPercent float64 `json:"bus_saving_per_percent" yaml:"busSavingPerPercent" validate:"gte=0"`

	// Demand. DiversionRate is the share of displaced bus riders who move to the tram.
	DiversionRate       float64 `json:"diversion_rate" yaml:"diversionRate" validate:"gte=0,lte=1"`
	InducedDemandBelow  float64 `json:"induced_demand_below" yaml:"inducedDemandBelow" validate:"gte=0"`
	InducedDemandFactor float64 `json:"induced_demand_factor" yaml:"inducedDemandFactor" validate:"gte=1"`
	MorningDemand       float64 `json:"morning_demand" yaml:"morningDemand" validate:"gt=0"`
	EveningDemand       float64 `json:"evening_demand" yaml:"eveningDemand" validate:"gt=0"`
	PeakZoneBoost       float64 `json:"peak_zone_boost" yaml:"peakZoneBoost" validate:"gt=0"`
	CommercialWeight    float64 `json:"commercial_weight" yaml:"commercialWeight" validate:"gte=0"`

	// Supply. Severities stretch the dispatch interval at full weather intensity; gains
	// multiply capacity.
	RainSeverity float64 `json:"rain_severity" yaml:"rainSeverity" validate:"gte=0"`
	SnowSeverity float64 `json:"snow_severity" yaml:"snowSeverity" validate:"gte=0"`
	PriorityGain float64 `json:"priority_gain" yaml:"priorityGain" validate:"gte=1"`
	AbsoluteGain float64 `json:"absolute_gain" yaml:"absoluteGain" validate:"gte=1"`

	CapacityPerVehicle float64 `json:"capacity_per_vehicle" yaml:"capacityPerVehicle" validate:"gt=0"`
	PeakFraction       float64 `json:"peak_fraction" yaml:"peakFraction" validate:"gt=0,lte=1"`
	SharedPenalty      float64 `json:"shared_penalty" yaml:"sharedPenalty" validate:"gte=1"`
	CongestionCap      float64 `json:"congestion_cap" yaml:"congestionCap" validate:"gt=0"`

	ComplaintBusWeight      float64 `json:"complaint_bus_weight" yaml:"complaintBusWeight" validate:"gte=0"`
	ComplaintOverloadWeight float64 `json:"complaint_overload_weight" yaml:"complaintOverloadWeight" validate:"gte=0"`
}

// DefaultCalibration returns the calibration used by the dashboard.
func DefaultCalibration() Calibration {
	return Calibration{
		BaseBudget:          5000,
		IntervalCeiling:     15,
		TramCostPerMinute:   300,
		BusSavingPerPercent: 100,

		DiversionRate:       0.8,
		InducedDemandBelow:  5,
		InducedDemandFactor: 1.1,
		MorningDemand:       1.3,
		EveningDemand:       1.2,
		PeakZoneBoost:       1.2,
		CommercialWeight:    0.4,

		RainSeverity: 0.10,
		SnowSeverity: 0.30,
		PriorityGain: 1.25,
		AbsoluteGain: 2.0,

		CapacityPerVehicle: 250,
		PeakFraction:       0.20,
		SharedPenalty:      1.2,
		CongestionCap:      150,

		ComplaintBusWeight:      1.2,
		ComplaintOverloadWeight: 1.5,
	}
}

// RiskLevel classifies the complaint score.
type RiskLevel string

const (
	RiskNotReady RiskLevel = "not_ready"
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskSevere   RiskLevel = "severe"
)

// CongestionBand classifies average congestion.
type CongestionBand string

const (
	BandNone        CongestionBand = ""
	BandSpare       CongestionBand = "spare"
	BandBalanced    CongestionBand = "balanced"
	BandCaution     CongestionBand = "caution"
	BandOvercrowded CongestionBand = "overcrowded"
)

// BudgetTag classifies the budget change.
type BudgetTag string

const (
	BudgetNone           BudgetTag = ""
	BudgetSaving         BudgetTag = "saving"
	BudgetSlightIncrease BudgetTag = "slight_increase"
	BudgetBurden         BudgetTag = "burden"
)

// Strategy places a scenario in the budget/service quadrant.
type Strategy string

const (
	StrategyNone            Strategy = ""
	StrategyBalanced        Strategy = "balanced"
	StrategyServiceFirst    Strategy = "service_first"
	StrategyBudgetFirst     Strategy = "budget_first"
	StrategyNeedsAdjustment Strategy = "needs_adjustment"
)

// StationResult is the projected load at one station.
type StationResult struct {
	StationID                  int     `json:"station_id"`
	CongestionPercent          float64 `json:"congestion_percent"`           // clamped to [0, CongestionCap]
	UnclampedCongestionPercent float64 `json:"unclamped_congestion_percent"` // before the cap
	ProjectedPassengers        float64 `json:"projected_passengers"`         // daily
	DivertedPassengers         float64 `json:"diverted_passengers"`          // displaced bus riders included above
}

// HourlyPoint is one point of the indicative daily congestion profile.
type HourlyPoint struct {
	Hour              int     `json:"hour"`
	CongestionPercent float64 `json:"congestion_percent"`
}

// Result is the output of one simulation. A zero Result with Ready false is the
// not-ready sentinel returned while the station dataset is empty.
type Result struct {
	Ready                    bool            `json:"ready"`
	BudgetTotal              float64         `json:"budget_total"`
	BudgetDelta              float64         `json:"budget_delta"`
	BudgetChangePercent      float64         `json:"budget_change_percent"`
	AverageCongestionPercent float64         `json:"average_congestion_percent"`
	ComplaintScore           float64         `json:"complaint_score"` // 0..100
	ComplaintRisk            RiskLevel       `json:"complaint_risk"`
	CongestionBand           CongestionBand  `json:"congestion_band"`
	BudgetTag                BudgetTag       `json:"budget_tag"`
	Strategy                 Strategy        `json:"strategy"`
	Message                  string          `json:"message"`
	EffectiveInterval        float64         `json:"effective_interval_minutes"`
	CapacityPerHour          float64         `json:"capacity_per_hour"`
	Hourly                   []HourlyPoint   `json:"hourly"`
	PerStation               []StationResult `json:"per_station"`
}

// NotReady returns the sentinel result for an empty station dataset.
func NotReady() Result {
	return Result{
		Ready:         false,
		ComplaintRisk: RiskNotReady,
		Message:       "station data is loading",
		Hourly:        []HourlyPoint{},
		PerStation:    []StationResult{},
	}
}

// hourlyProfile scales the average congestion over the operating day.
var hourlyProfile = []struct {
	hour   int
	factor float64
}{
	{6, 0.4}, {7, 0.8}, {8, 1.3}, {9, 0.9}, {12, 0.6}, {18, 1.2}, {20, 0.7}, {22, 0.5},
}
