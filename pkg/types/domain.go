package types

// Model describes one catalog entry and its on-disk/residency state.
type Model struct {
	// Model file name relative to the models directory.
	// example: health-self-q4_k_m.gguf
	Filename string `json:"filename" example:"health-self-q4_k_m.gguf"`
	// Human-friendly name.
	// example: 건강 요약 (본인)
	DisplayName string `json:"display_name" example:"건강 요약 (본인)"`
	// Domain category: health or wellness.
	// example: health
	Category string `json:"category" example:"health"`
	// Narrative perspective: self, other or other_short.
	// example: self
	Perspective string `json:"perspective" example:"self"`
	// Load priority; lower wins when requests compete for the slot.
	// example: 1
	Priority int `json:"priority" example:"1"`
	// True when the model file exists in the models directory.
	// example: true
	Present bool `json:"present" example:"true"`
	// True when this model currently occupies the slot.
	// example: false
	Resident bool `json:"resident" example:"false"`
}

// BloodPressure in mmHg.
type BloodPressure struct {
	// example: 120
	Systolic int `json:"systolic" example:"120"`
	// example: 80
	Diastolic int `json:"diastolic" example:"80"`
}

// Metric is a named measurement such as the day's best activity.
type Metric struct {
	// example: steps
	Name string `json:"name" example:"steps"`
	// example: 9500
	Value float64 `json:"value" example:"9500"`
}

// ActivityData is the structured input rendered into a prompt.
type ActivityData struct {
	// example: 8200
	Steps int `json:"steps" example:"8200"`
	// example: 310
	Calories float64 `json:"calories" example:"310"`
	// example: 42
	ActiveMinutes int `json:"active_minutes" example:"42"`
	// example: 5.2
	DistanceKm float64 `json:"distance_km" example:"5.2"`
	// example: 71
	HeartRate int `json:"heart_rate" example:"71"`
	// Optional hours of sleep.
	// example: 7.5
	SleepHours *float64 `json:"sleep_hours,omitempty" example:"7.5"`
	// Optional water intake in ml.
	// example: 1500
	WaterMl *int `json:"water_ml,omitempty" example:"1500"`
	// Optional blood pressure.
	BloodPressure *BloodPressure `json:"blood_pressure,omitempty"`
	// Optional best metric for the wellness category.
	BestMetric *Metric `json:"best_metric,omitempty"`
}
