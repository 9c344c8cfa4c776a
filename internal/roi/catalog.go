package roi

// DefaultCatalog returns the reference health-event catalog: the seven
// fresh-cow disorders tracked by the model, with per-case costs from the
// reference sheet and annual counts sized for the default herd.
func DefaultCatalog() []HealthEvent {
	return []HealthEvent{
		{Key: "mastitis", Name: "Clinical mastitis", Count: 125, CostPerEvent: 444},
		{Key: "metritis", Name: "Metritis", Count: 95, CostPerEvent: 386},
		{Key: "ketosis", Name: "Ketosis", Count: 80, CostPerEvent: 289},
		{Key: "retained_placenta", Name: "Retained placenta", Count: 40, CostPerEvent: 313},
		{Key: "displaced_abomasum", Name: "Displaced abomasum", Count: 15, CostPerEvent: 639},
		{Key: "lameness", Name: "Lameness", Count: 110, CostPerEvent: 333},
		{Key: "milk_fever", Name: "Milk fever", Count: 25, CostPerEvent: 246},
	}
}

// DefaultInputs returns the model's starting point: a 500-cow herd with the
// reference economics and the default catalog. Fresh events stay derived
// from herd size until the user overrides them.
func DefaultInputs() Inputs {
	return Inputs{
		MilkingCows: 500,

		ReplacementCost: 2400,
		SalvageValue:    800,
		MilkPrice:       18.50, // $/cwt
		LbMilkPerLbDM:   1.5,
		DMCost:          0.13, // $/lb dry matter

		DeathEvents: 30,
		SoldEvents:  120,

		HealthEvents: DefaultCatalog(),
	}
}
