package roi

import (
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func testInputs() Inputs {
	return Inputs{
		MilkingCows:     100,
		FreshPerYear:    150,
		FreshOverride:   true,
		ReplacementCost: 2000,
		SalvageValue:    500,
		MilkPrice:       20,
		LbMilkPerLbDM:   2,
		DMCost:          0.1,
		DeathEvents:     10,
		SoldEvents:      30,
		HealthEvents: []HealthEvent{
			{Key: "mastitis", Name: "Clinical mastitis", Count: 10, CostPerEvent: 100},
		},
	}
}

func TestCompute_BaseScenarioBreakdown(t *testing.T) {
	result := Compute(testInputs(), Base)

	// deathEvents 10, incidence 0.1, reduction 0.113:
	// avoided = 10 - 10*0.887 = 1.13, savings = 1.13 * 500
	nearlyEqual(t, "deathSavings", result.Breakdown.DeathSavings, 565)

	// soldRate 30/150 = 0.2, delta = 0.2*0.113 = 0.0226,
	// savings = 0.0226 * 30 * (2000-500)
	nearlyEqual(t, "cullingSavings", result.Breakdown.CullingSavings, 1017)

	// 10 cases * 0.549 * 100
	nearlyEqual(t, "healthSavings", result.Breakdown.HealthSavings, 549)

	// revenue 4.94*20/100 = 0.988, feed 4.94/2*0.1 = 0.247,
	// net 0.741 * 100 cows * 210 days
	nearlyEqual(t, "productionSavings", result.Breakdown.ProductionSavings, 15561)

	// 100*4.5 + 40*3 + 660*0.10*20*12
	nearlyEqual(t, "investmentAnnual", result.InvestmentAnnual, 16410)

	nearlyEqual(t, "savingsAnnual", result.SavingsAnnual, 565+1017+549+15561)
	nearlyEqual(t, "netProfitAnnual", result.NetProfitAnnual, result.SavingsAnnual-16410)
	nearlyEqual(t, "roiRatio", result.ROIRatio, result.SavingsAnnual/16410)

	nearlyEqual(t, "returnPerCowYear", result.ReturnPerCowYear, result.NetProfitAnnual/100)
	nearlyEqual(t, "returnPerCowMonth", result.ReturnPerCowMonth, result.ReturnPerCowYear/12)
	nearlyEqual(t, "returnPerCowDay", result.ReturnPerCowDay, result.ReturnPerCowMonth/30)

	if result.MonthsToBreakeven == nil || result.DaysToBreakeven == nil {
		t.Fatalf("expected breakeven estimates, got nil")
	}
	nearlyEqual(t, "monthsToBreakeven", *result.MonthsToBreakeven, 16410/result.SavingsAnnual*12)
	nearlyEqual(t, "daysToBreakeven", *result.DaysToBreakeven, 16410/result.SavingsAnnual*365)
}

func TestCompute_ReferenceHerdInvestment(t *testing.T) {
	in := DefaultInputs()
	in.MilkingCows = 10000
	in.FreshOverride = false

	nearlyEqual(t, "effective fresh", in.EffectiveFresh(), 13500)

	// 10000*4.5*1 + 40*3 + 660*0.10*20*12 = 45000 + 120 + 15840
	for _, scenario := range Scenarios {
		result := Compute(in, scenario)
		nearlyEqual(t, string(scenario)+" investmentAnnual", result.InvestmentAnnual, 60960)
	}
}

func TestCompute_ConservativeShrinksEverySavingsComponent(t *testing.T) {
	in := DefaultInputs()
	in.MilkingCows = 10000
	in.FreshOverride = false

	base := Compute(in, Base)
	conservative := Compute(in, Conservative)

	pairs := []struct {
		name         string
		smaller, big float64
	}{
		{"deathSavings", conservative.Breakdown.DeathSavings, base.Breakdown.DeathSavings},
		{"cullingSavings", conservative.Breakdown.CullingSavings, base.Breakdown.CullingSavings},
		{"healthSavings", conservative.Breakdown.HealthSavings, base.Breakdown.HealthSavings},
		{"productionSavings", conservative.Breakdown.ProductionSavings, base.Breakdown.ProductionSavings},
	}
	for _, p := range pairs {
		if p.smaller >= p.big {
			t.Fatalf("conservative %s = %v, want strictly less than base %v", p.name, p.smaller, p.big)
		}
	}

	nearlyEqual(t, "conservative investmentAnnual", conservative.InvestmentAnnual, 60960)
}

func TestCompute_SavingsMonotoneInScenario(t *testing.T) {
	in := testInputs()

	conservative := Compute(in, Conservative)
	base := Compute(in, Base)
	optimistic := Compute(in, Optimistic)

	if conservative.SavingsAnnual > base.SavingsAnnual {
		t.Fatalf("conservative savings %v exceed base %v", conservative.SavingsAnnual, base.SavingsAnnual)
	}
	if base.SavingsAnnual > optimistic.SavingsAnnual {
		t.Fatalf("base savings %v exceed optimistic %v", base.SavingsAnnual, optimistic.SavingsAnnual)
	}
}

func TestCompute_ZeroDeathEventsYieldZeroDeathSavings(t *testing.T) {
	in := testInputs()
	in.DeathEvents = 0

	for _, scenario := range Scenarios {
		result := Compute(in, scenario)
		if result.Breakdown.DeathSavings != 0 {
			t.Fatalf("%s deathSavings = %v, want exactly 0", scenario, result.Breakdown.DeathSavings)
		}
	}
}

func TestCompute_ZeroFreshGuardsCullingSavings(t *testing.T) {
	in := testInputs()
	in.FreshOverride = true
	in.FreshPerYear = 0
	in.SoldEvents = 50

	result := Compute(in, Base)

	if result.Breakdown.CullingSavings != 0 {
		t.Fatalf("cullingSavings = %v, want 0 when fresh count is 0", result.Breakdown.CullingSavings)
	}
	if math.IsNaN(result.SavingsAnnual) || math.IsInf(result.SavingsAnnual, 0) {
		t.Fatalf("savingsAnnual is not finite: %v", result.SavingsAnnual)
	}
}

func TestCompute_ZeroHerdProducesFiniteOutputs(t *testing.T) {
	in := testInputs()
	in.MilkingCows = 0
	in.FreshOverride = false // derived fresh is also 0
	in.LbMilkPerLbDM = 0     // feed-efficiency denominator too

	result := Compute(in, Base)

	fields := map[string]float64{
		"savingsAnnual":     result.SavingsAnnual,
		"investmentAnnual":  result.InvestmentAnnual,
		"netProfitAnnual":   result.NetProfitAnnual,
		"roiRatio":          result.ROIRatio,
		"returnPerCowYear":  result.ReturnPerCowYear,
		"returnPerCowMonth": result.ReturnPerCowMonth,
		"returnPerCowDay":   result.ReturnPerCowDay,
		"deathSavings":      result.Breakdown.DeathSavings,
		"cullingSavings":    result.Breakdown.CullingSavings,
		"productionSavings": result.Breakdown.ProductionSavings,
		"deathIncidence":    result.Breakdown.DeathIncidence,
		"soldRate":          result.Breakdown.SoldRate,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s is not finite: %v", name, v)
		}
	}

	if result.ReturnPerCowYear != 0 {
		t.Fatalf("returnPerCowYear = %v, want 0 for an empty herd", result.ReturnPerCowYear)
	}
}

func TestCompute_HealthSavingsOrderIndependent(t *testing.T) {
	// These three contributions accumulate to different floats depending on
	// addition order, so every ordering must go through the same sum.
	events := []HealthEvent{
		{Key: "a", Count: 3, CostPerEvent: 110},
		{Key: "b", Count: 7, CostPerEvent: 95},
		{Key: "c", Count: 1, CostPerEvent: 640},
	}
	orders := [][]int{
		{0, 1, 2}, {0, 2, 1},
		{1, 0, 2}, {1, 2, 0},
		{2, 0, 1}, {2, 1, 0},
	}

	in := testInputs()
	in.HealthEvents = events
	want := Compute(in, Base).Breakdown.HealthSavings

	for _, order := range orders {
		permuted := make([]HealthEvent, 0, len(events))
		for _, i := range order {
			permuted = append(permuted, events[i])
		}
		in.HealthEvents = permuted

		if got := Compute(in, Base).Breakdown.HealthSavings; got != want {
			t.Fatalf("healthSavings changed under permutation %v: %v vs %v", order, got, want)
		}
	}
}

func TestCompute_BreakevenNilWithoutSavings(t *testing.T) {
	result := Compute(Inputs{}, Base)

	if result.SavingsAnnual != 0 {
		t.Fatalf("empty inputs savingsAnnual = %v, want 0", result.SavingsAnnual)
	}
	if result.MonthsToBreakeven != nil || result.DaysToBreakeven != nil {
		t.Fatalf("expected nil breakeven estimates without savings")
	}
	if result.ROIRatio != 0 {
		t.Fatalf("roiRatio = %v, want 0", result.ROIRatio)
	}
}

func TestCompute_BreakevenMonthDayRatio(t *testing.T) {
	result := Compute(testInputs(), Base)

	if result.MonthsToBreakeven == nil || result.DaysToBreakeven == nil {
		t.Fatalf("expected breakeven estimates, got nil")
	}
	nearlyEqual(t, "days/months ratio", *result.DaysToBreakeven / *result.MonthsToBreakeven, 365.0/12.0)
}

func TestEffectiveFresh(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want float64
	}{
		{"derived from herd size", Inputs{MilkingCows: 10000}, 13500},
		{"rounds half away from zero", Inputs{MilkingCows: 10}, 14}, // 13.5
		{"rounds up", Inputs{MilkingCows: 37}, 50},                  // 49.95
		{"rounds down", Inputs{MilkingCows: 41}, 55},                // 55.35
		{"override wins", Inputs{MilkingCows: 10000, FreshOverride: true, FreshPerYear: 9000}, 9000},
		{"override zero is authoritative", Inputs{MilkingCows: 10000, FreshOverride: true}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.EffectiveFresh(); got != tc.want {
				t.Fatalf("EffectiveFresh() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScenario_MultiplierAndLabel(t *testing.T) {
	if got := Conservative.Multiplier(); got != 0.75 {
		t.Fatalf("conservative multiplier = %v", got)
	}
	if got := Base.Multiplier(); got != 1.0 {
		t.Fatalf("base multiplier = %v", got)
	}
	if got := Optimistic.Multiplier(); got != 1.25 {
		t.Fatalf("optimistic multiplier = %v", got)
	}
	if !Base.Valid() || Scenario("aggressive").Valid() {
		t.Fatalf("scenario validity mismatch")
	}
}

func TestComputeAll_CoversEveryScenarioInOrder(t *testing.T) {
	results := ComputeAll(testInputs())

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, scenario := range Scenarios {
		if results[i].Scenario != scenario {
			t.Fatalf("results[%d].Scenario = %s, want %s", i, results[i].Scenario, scenario)
		}
		if results[i].Label != scenario.Label() {
			t.Fatalf("results[%d].Label = %q, want %q", i, results[i].Label, scenario.Label())
		}
	}
}
