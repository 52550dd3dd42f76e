package model

// FacilityRef is one campus facility as seen by the assistant.
// Values are snapshot entries and are never mutated after load.
type FacilityRef struct {
	Name        string `json:"name" db:"name"`
	Category    string `json:"category" db:"category"`
	Location    string `json:"location" db:"location"`
	Description string `json:"description" db:"description"`
	Bookable    bool   `json:"bookable" db:"is_bookable"`
}
