package model

// Service is a catalog entry (hairstyle). Immutable reference data:
// looked up by the engine, never mutated.
type Service struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`    // display string, e.g. "85€"
	Duration string `json:"duration"` // raw catalog string, e.g. "3h30"
	Category string `json:"category"`
}
