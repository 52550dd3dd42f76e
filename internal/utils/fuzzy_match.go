package utils

import (
	"strings"

	"github.com/sengtan/utm-campus-chatbot/internal/model"
)

// Common aliases for campus facility kinds
var facilityAliases = map[string][]string{
	"gym":        {"gym", "gymnasium", "fitness", "sports", "sport"},
	"lab":        {"lab", "laboratory", "computer", "workstation"},
	"computer":   {"computer", "lab", "laboratory"},
	"hostel":     {"hostel", "accommodation", "dorm", "dormitory", "residence", "kolej"},
	"dorm":       {"hostel", "accommodation", "dormitory", "residence"},
	"cafeteria":  {"cafeteria", "dining", "canteen", "food", "cafe"},
	"food":       {"cafeteria", "dining", "canteen", "food"},
	"library":    {"library", "study", "reading"},
	"study":      {"library", "study", "discussion"},
	"hall":       {"hall", "auditorium", "dewan"},
	"auditorium": {"auditorium", "hall"},
	"pool":       {"pool", "swimming", "aquatic"},
	"court":      {"court", "badminton", "futsal", "tennis"},
	"room":       {"room", "meeting", "discussion", "seminar"},
}

// FuzzyMatchFacility performs fuzzy matching of a search term against a facility.
// Name, category and location are all considered.
func FuzzyMatchFacility(searchTerm string, f model.FacilityRef) bool {
	searchLower := strings.ToLower(strings.TrimSpace(searchTerm))
	if searchLower == "" {
		return true
	}

	haystack := strings.ToLower(f.Name + " " + f.Category + " " + f.Location)

	// Exact or contains match
	if strings.Contains(haystack, searchLower) {
		return true
	}

	// Check aliases
	for key, values := range facilityAliases {
		if !strings.Contains(searchLower, key) {
			continue
		}
		for _, alias := range values {
			if strings.Contains(haystack, alias) {
				return true
			}
		}
	}

	return false
}

// FilterFacilities returns the facilities matching the search term, preserving order
func FilterFacilities(searchTerm string, facilities []model.FacilityRef) []model.FacilityRef {
	matched := make([]model.FacilityRef, 0, len(facilities))
	for _, f := range facilities {
		if FuzzyMatchFacility(searchTerm, f) {
			matched = append(matched, f)
		}
	}
	return matched
}
