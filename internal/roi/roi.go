package roi

import (
	"math"
	"sort"
)

// Fixed model constants. These mirror the reference herd-economics sheet and
// are not user-editable.
const (
	deathReductionBase      = 0.113
	cullVoluntaryReduceBase = 0.0666
	cullSoldReduceBase      = 0.113
	healthEventReduceBase   = 0.549
	productionGainBase      = 4.94 // lb milk/cow/day equivalent, percent terms

	freshPerCowFactor = 1.35

	wagePerHour         = 20.0
	monthlyHours        = 22.0 * 30.0
	laborChangeFraction = 0.10

	costPerDose         = 4.5
	applicatorCost      = 40.0
	applicatorCount     = 3.0
	applicationsPerYear = 1.0

	productionDaysPerYear = 210.0
)

// Scenario selects how aggressively the program's base reduction and gain
// percentages are scaled.
type Scenario string

const (
	Conservative Scenario = "conservative"
	Base         Scenario = "base"
	Optimistic   Scenario = "optimistic"
)

// Scenarios lists all scenarios in display order.
var Scenarios = []Scenario{Conservative, Base, Optimistic}

// Multiplier returns the factor applied to every base reduction/gain
// percentage. Unknown scenarios fall back to the base multiplier.
func (s Scenario) Multiplier() float64 {
	switch s {
	case Conservative:
		return 0.75
	case Optimistic:
		return 1.25
	default:
		return 1.0
	}
}

// Label returns the human-readable scenario name.
func (s Scenario) Label() string {
	switch s {
	case Conservative:
		return "Conservative"
	case Optimistic:
		return "Optimistic"
	default:
		return "Base"
	}
}

// Valid reports whether s is one of the three known scenarios.
func (s Scenario) Valid() bool {
	return s == Conservative || s == Base || s == Optimistic
}

// HealthEvent is one row of the health-event catalog: an annual case count
// and the cost of a single case. Key is the stable identifier rows are
// addressed by; position in the slice is presentation order only.
type HealthEvent struct {
	Key          string  `json:"key"`
	Name         string  `json:"name"`
	Count        float64 `json:"count"`
	CostPerEvent float64 `json:"cost_per_event"`
}

// Inputs holds every user-editable knob of the model. All numeric fields are
// assumed finite; non-negative by convention but not enforced.
type Inputs struct {
	MilkingCows float64 `json:"milking_cows"`

	// FreshPerYear is authoritative only when FreshOverride is set;
	// otherwise the effective value is derived from herd size.
	FreshPerYear  float64 `json:"fresh_per_year"`
	FreshOverride bool    `json:"fresh_override"`

	ReplacementCost float64 `json:"replacement_cost"`
	SalvageValue    float64 `json:"salvage_value"`
	MilkPrice       float64 `json:"milk_price"`
	LbMilkPerLbDM   float64 `json:"lb_milk_per_lb_dm"`
	DMCost          float64 `json:"dm_cost"`

	DeathEvents float64 `json:"death_events"`
	SoldEvents  float64 `json:"sold_events"`

	HealthEvents []HealthEvent `json:"health_events"`
}

// EffectiveFresh resolves the fresh-cow count used everywhere downstream:
// the user's override when set, otherwise round(milkingCows * 1.35).
func (in Inputs) EffectiveFresh() float64 {
	if in.FreshOverride {
		return in.FreshPerYear
	}
	return math.Round(in.MilkingCows * freshPerCowFactor)
}

// Breakdown exposes the intermediate sheet values behind a Result. The
// incidence and rate fields are audit values; NewCullingRate in particular
// feeds nothing downstream but is part of the reference sheet.
type Breakdown struct {
	DeathSavings      float64 `json:"death_savings"`
	CullingSavings    float64 `json:"culling_savings"`
	HealthSavings     float64 `json:"health_savings"`
	ProductionSavings float64 `json:"production_savings"`

	ProductCostAnnual    float64 `json:"product_cost_annual"`
	ApplicatorInvestment float64 `json:"applicator_investment"`
	LaborCostAnnual      float64 `json:"labor_cost_annual"`

	DeathIncidence    float64 `json:"death_incidence"`
	NewDeathIncidence float64 `json:"new_death_incidence"`
	CullingRate       float64 `json:"culling_rate"`
	NewCullingRate    float64 `json:"new_culling_rate"`
	SoldRate          float64 `json:"sold_rate"`
	NewSoldRate       float64 `json:"new_sold_rate"`
}

// Result is the full output of one scenario computation. Breakeven fields
// are nil when the program never pays back (no positive savings) or costs
// nothing to run.
type Result struct {
	Scenario Scenario `json:"scenario"`
	Label    string   `json:"label"`

	SavingsAnnual    float64 `json:"savings_annual"`
	InvestmentAnnual float64 `json:"investment_annual"`
	NetProfitAnnual  float64 `json:"net_profit_annual"`
	ROIRatio         float64 `json:"roi_ratio"`

	ReturnPerCowYear  float64 `json:"return_per_cow_year"`
	ReturnPerCowMonth float64 `json:"return_per_cow_month"`
	ReturnPerCowDay   float64 `json:"return_per_cow_day"`

	MonthsToBreakeven *float64 `json:"months_to_breakeven"`
	DaysToBreakeven   *float64 `json:"days_to_breakeven"`

	Breakdown Breakdown `json:"breakdown"`
}

// Compute evaluates one efficacy scenario against the given inputs.
//
// It is pure and total: any finite inputs produce finite outputs. Ratios
// whose denominator is zero (herd size, fresh count, feed efficiency)
// contribute zero instead of propagating NaN/Inf.
func Compute(in Inputs, scenario Scenario) Result {
	mult := scenario.Multiplier()
	fresh := in.EffectiveFresh()

	// Death events avoided, via the incidence ratio rather than the
	// algebraic simplification so the deathEvents == 0 path stays exact.
	deathIncidence := 0.0
	if in.MilkingCows > 0 {
		deathIncidence = in.DeathEvents / in.MilkingCows
	}
	deathReduction := deathReductionBase * mult
	newDeathIncidence := deathIncidence * (1 - deathReduction)
	newDeathEvents := in.DeathEvents
	if deathIncidence != 0 {
		newDeathEvents = in.DeathEvents * newDeathIncidence / deathIncidence
	}
	deathSavings := (in.DeathEvents - newDeathEvents) * in.SalvageValue

	// Culling: the sold-rate delta drives the savings; the overall culling
	// rate pair is carried for the audit view only.
	cullingRate, soldRate := 0.0, 0.0
	if fresh > 0 {
		cullingRate = (in.DeathEvents + in.SoldEvents) / fresh
		soldRate = in.SoldEvents / fresh
	}
	newCullingRate := cullingRate * (1 - cullVoluntaryReduceBase*mult)
	newSoldRate := soldRate * (1 - cullSoldReduceBase*mult)
	cullingSavings := (soldRate - newSoldRate) * in.SoldEvents * (in.ReplacementCost - in.SalvageValue)

	// Health events: each avoided case saves its per-case cost. The
	// contributions are accumulated in value order, not catalog order, so
	// the total is identical under any permutation of the events.
	healthReduction := healthEventReduceBase * mult
	contributions := make([]float64, 0, len(in.HealthEvents))
	for _, ev := range in.HealthEvents {
		contributions = append(contributions, ev.Count*healthReduction*ev.CostPerEvent)
	}
	sort.Float64s(contributions)
	healthSavings := 0.0
	for _, c := range contributions {
		healthSavings += c
	}

	// Production (income over feed cost) per cow-day, scaled to the herd
	// over the production year.
	gainPercent := productionGainBase * mult
	extraRevenuePerCowDay := gainPercent * in.MilkPrice / 100
	extraDMPerCowDay := 0.0
	if in.LbMilkPerLbDM > 0 {
		extraDMPerCowDay = gainPercent / in.LbMilkPerLbDM
	}
	netIOFCPerCowDay := extraRevenuePerCowDay - extraDMPerCowDay*in.DMCost
	productionSavings := netIOFCPerCowDay * in.MilkingCows * productionDaysPerYear

	// Cost side, scenario-independent.
	laborCostAnnual := monthlyHours * laborChangeFraction * wagePerHour * 12
	productCostAnnual := in.MilkingCows * costPerDose * applicationsPerYear
	applicatorInvestment := applicatorCost * applicatorCount
	investmentAnnual := productCostAnnual + applicatorInvestment + laborCostAnnual

	savingsAnnual := deathSavings + cullingSavings + healthSavings + productionSavings
	netProfitAnnual := savingsAnnual - investmentAnnual

	roiRatio := 0.0
	if investmentAnnual > 0 {
		roiRatio = savingsAnnual / investmentAnnual
	}

	returnPerCowYear := 0.0
	if in.MilkingCows > 0 {
		returnPerCowYear = netProfitAnnual / in.MilkingCows
	}
	returnPerCowMonth := returnPerCowYear / 12
	returnPerCowDay := returnPerCowMonth / 30

	var monthsToBreakeven, daysToBreakeven *float64
	if savingsAnnual > 0 && investmentAnnual > 0 {
		months := investmentAnnual / savingsAnnual * 12
		days := investmentAnnual / savingsAnnual * 365
		monthsToBreakeven = &months
		daysToBreakeven = &days
	}

	return Result{
		Scenario: scenario,
		Label:    scenario.Label(),

		SavingsAnnual:    savingsAnnual,
		InvestmentAnnual: investmentAnnual,
		NetProfitAnnual:  netProfitAnnual,
		ROIRatio:         roiRatio,

		ReturnPerCowYear:  returnPerCowYear,
		ReturnPerCowMonth: returnPerCowMonth,
		ReturnPerCowDay:   returnPerCowDay,

		MonthsToBreakeven: monthsToBreakeven,
		DaysToBreakeven:   daysToBreakeven,

		Breakdown: Breakdown{
			DeathSavings:      deathSavings,
			CullingSavings:    cullingSavings,
			HealthSavings:     healthSavings,
			ProductionSavings: productionSavings,

			ProductCostAnnual:    productCostAnnual,
			ApplicatorInvestment: applicatorInvestment,
			LaborCostAnnual:      laborCostAnnual,

			DeathIncidence:    deathIncidence,
			NewDeathIncidence: newDeathIncidence,
			CullingRate:       cullingRate,
			NewCullingRate:    newCullingRate,
			SoldRate:          soldRate,
			NewSoldRate:       newSoldRate,
		},
	}
}

// ComputeAll evaluates every scenario in display order against the same
// input snapshot.
func ComputeAll(in Inputs) []Result {
	results := make([]Result, 0, len(Scenarios))
	for _, s := range Scenarios {
		results = append(results, Compute(in, s))
	}
	return results
}
