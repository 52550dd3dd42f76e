package service

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sengtan/utm-campus-chatbot/internal/model"
)

// Facilities listed by the location rule
const locationRuleLimit = 6

// fallbackRule maps a keyword set to a reply; the first matching rule wins
type fallbackRule struct {
	name     string
	keywords []string
	reply    func(facilities []model.FacilityRef) string
}

func static(text string) func([]model.FacilityRef) string {
	return func([]model.FacilityRef) string { return text }
}

var fallbackRules = []fallbackRule{
	{
		name:     "computer_lab",
		keywords: []string{"computer", "computers", "lab", "labs", "laboratory", "pc", "pcs", "workstation", "workstations", "printer", "projector"},
		reply:    static("🖥️ **Computer Lab 1** is located at **Block A, Level 2**. It has 40 workstations and is available for booking. You can use it for coursework and projects."),
	},
	{
		name:     "library",
		keywords: []string{"library", "study", "studying", "reading", "books", "quiet"},
		reply:    static("📚 The **Library** is located at **Block B, Ground Floor**. It's open from 8:00 AM to 10:00 PM and provides study spaces and resources for students."),
	},
	{
		name:     "fitness",
		keywords: []string{"gym", "gymnasium", "sport", "sports", "exercise", "fitness", "workout"},
		reply:    static("🏃 The **Gymnasium** is located at the **Sports Complex**. It's available for booking and hosts various sports activities and fitness programs."),
	},
	{
		name:     "accommodation",
		keywords: []string{"hostel", "hostels", "accommodation", "dormitory", "dorm", "residence"},
		reply:    static("🏠 We have accommodation facilities:\n• **Male Hostel Block C** - Hostel Area\n• **Female Hostel Block D** - Hostel Area\n\nBoth provide student accommodation with necessary amenities."),
	},
	{
		name:     "dining",
		keywords: []string{"cafeteria", "food", "dining", "eat", "meal", "meals", "canteen", "lunch", "breakfast", "dinner"},
		reply:    static("🍽️ The **Cafeteria** is located at the **Student Center**. It's open from 7:00 AM to 9:00 PM and serves meals throughout the day."),
	},
	{
		name:     "location",
		keywords: []string{"where", "location", "locate", "find", "directions"},
		reply:    facilityDirectory,
	},
	{
		name:     "issue_report",
		keywords: []string{"problem", "issue", "broken", "report", "complaint", "faulty", "damaged", "leak", "leaking"},
		reply:    static("🔧 To report a facility issue:\n1. Go to the **Report Issue** page\n2. Describe the problem in detail\n3. Select the issue type and location\n4. Submit your report\n\nYou can track the status of your report from your dashboard."),
	},
	{
		name:     "booking",
		keywords: []string{"book", "booking", "booked", "reserve", "reservation", "reserving"},
		reply:    static("📅 **Facility Booking:**\n• Computer Lab 1 - Available for booking\n• Gymnasium - Available for booking\n\nTo book a facility, please contact the facility management or use the booking system if available."),
	},
}

const genericFallback = "👋 **UTM Campus Assistant** can help you with:\n\n• 🔍 **Find facilities** - Ask about locations and details\n• 🔧 **Report issues** - Submit facility problems\n• 📅 **Booking info** - Get booking information\n• ℹ️ **General info** - Campus facility questions\n\nWhat can I help you with today?"

// facilityDirectory lists live snapshot entries
func facilityDirectory(facilities []model.FacilityRef) string {
	if len(facilities) == 0 {
		return "📍 The facility directory is not available right now. You can ask me about computer labs, the library, the gymnasium, hostels or the cafeteria.\n\nWhat specific facility are you looking for?"
	}
	if len(facilities) > locationRuleLimit {
		facilities = facilities[:locationRuleLimit]
	}

	var sb strings.Builder
	sb.WriteString("📍 **UTM Campus Facilities:**\n\n")
	for _, f := range facilities {
		fmt.Fprintf(&sb, "• **%s** - %s\n", f.Name, f.Location)
	}
	sb.WriteString("\nWhat specific facility are you looking for?")
	return sb.String()
}

// FallbackResponder is the deterministic, network-free reply path
type FallbackResponder struct {
	facilities FacilitySource
}

// NewFallbackResponder creates a responder that reads live entries from facilities
func NewFallbackResponder(facilities FacilitySource) *FallbackResponder {
	return &FallbackResponder{facilities: facilities}
}

// Respond picks a canned reply by keyword. It always returns non-empty text.
// Keywords match whole words only, so "lab" does not fire inside "available".
func (f *FallbackResponder) Respond(message string, _ model.IntentResult) string {
	reply, _ := f.match(message)
	return reply
}

// match returns the reply and the name of the rule that produced it
func (f *FallbackResponder) match(message string) (string, string) {
	words := tokenize(message)
	for _, rule := range fallbackRules {
		if containsAny(words, rule.keywords) {
			return rule.reply(f.snapshot()), rule.name
		}
	}
	return genericFallback, "generic"
}

func (f *FallbackResponder) snapshot() []model.FacilityRef {
	if f.facilities == nil {
		return nil
	}
	return f.facilities.Snapshot()
}

// tokenize lower-cases text and splits it into letter/digit runs
func tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := make(map[string]struct{}, len(fields))
	for _, w := range fields {
		words[w] = struct{}{}
	}
	return words
}

func containsAny(words map[string]struct{}, keywords []string) bool {
	for _, k := range keywords {
		if _, ok := words[k]; ok {
			return true
		}
	}
	return false
}
