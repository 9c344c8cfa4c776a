package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/raphaelsaraiva17/FeraFreshROI/internal/roi"
)

// File is the optional YAML override for the built-in catalog and default
// herd economics. Farms deploying the calculator with their own cost
// assumptions ship this file next to the binary.
type File struct {
	Defaults struct {
		MilkingCows     *float64 `yaml:"milking_cows"`
		ReplacementCost *float64 `yaml:"replacement_cost"`
		SalvageValue    *float64 `yaml:"salvage_value"`
		MilkPrice       *float64 `yaml:"milk_price"`
		LbMilkPerLbDM   *float64 `yaml:"lb_milk_per_lb_dm"`
		DMCost          *float64 `yaml:"dm_cost"`
		DeathEvents     *float64 `yaml:"death_events"`
		SoldEvents      *float64 `yaml:"sold_events"`
	} `yaml:"defaults"`
	HealthEvents []struct {
		Key          string  `yaml:"key"`
		Name         string  `yaml:"name"`
		Count        float64 `yaml:"count"`
		CostPerEvent float64 `yaml:"cost_per_event"`
	} `yaml:"health_events"`
}

// Load reads the override file and merges it over the built-in defaults.
// A missing file is not an error: the built-in catalog is returned as-is.
func Load(path string) (roi.Inputs, error) {
	in := roi.DefaultInputs()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return in, nil
		}
		return in, fmt.Errorf("read catalog file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return in, fmt.Errorf("parse catalog file: %w", err)
	}

	applyDefaults(&in, f)

	if len(f.HealthEvents) > 0 {
		events := make([]roi.HealthEvent, 0, len(f.HealthEvents))
		seen := map[string]bool{}
		for _, ev := range f.HealthEvents {
			if ev.Key == "" {
				return in, fmt.Errorf("catalog file: health event %q has no key", ev.Name)
			}
			if seen[ev.Key] {
				return in, fmt.Errorf("catalog file: duplicate health event key %q", ev.Key)
			}
			seen[ev.Key] = true
			events = append(events, roi.HealthEvent{
				Key:          ev.Key,
				Name:         ev.Name,
				Count:        ev.Count,
				CostPerEvent: ev.CostPerEvent,
			})
		}
		in.HealthEvents = events
	}

	return in, nil
}

func applyDefaults(in *roi.Inputs, f File) {
	d := f.Defaults
	if d.MilkingCows != nil {
		in.MilkingCows = *d.MilkingCows
	}
	if d.ReplacementCost != nil {
		in.ReplacementCost = *d.ReplacementCost
	}
	if d.SalvageValue != nil {
		in.SalvageValue = *d.SalvageValue
	}
	if d.MilkPrice != nil {
		in.MilkPrice = *d.MilkPrice
	}
	if d.LbMilkPerLbDM != nil {
		in.LbMilkPerLbDM = *d.LbMilkPerLbDM
	}
	if d.DMCost != nil {
		in.DMCost = *d.DMCost
	}
	if d.DeathEvents != nil {
		in.DeathEvents = *d.DeathEvents
	}
	if d.SoldEvents != nil {
		in.SoldEvents = *d.SoldEvents
	}
}
