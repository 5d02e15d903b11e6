package model

import "strings"

type Category string

const (
	CategorySport    Category = "SPORT_APP"
	CategoryMedical  Category = "MEDICAL_APP"
	CategoryRent     Category = "RENT_APP"
	CategoryNotes    Category = "NOTES"
	CategoryGaming   Category = "GAMING_PLATFORM_APP"
	CategoryPersonal Category = "PERSONAL"
	CategoryWork     Category = "WORK"
)

// DefaultCalendarColorID is used for categories missing from the calendar color table.
const DefaultCalendarColorID = "1"

// CategoryInfo holds the display attributes of a category.
type CategoryInfo struct {
	Label string
	Color string // hex, for terminal rendering
	// CalendarColorID is the Google Calendar event colorId.
	CalendarColorID string
}

var categories = map[Category]CategoryInfo{
	CategorySport:    {Label: "Sport App", Color: "#FF6B6B", CalendarColorID: "11"},
	CategoryMedical:  {Label: "Medical App", Color: "#4D96FF", CalendarColorID: "7"},
	CategoryRent:     {Label: "Rent App", Color: "#9B5DE5", CalendarColorID: "9"},
	CategoryNotes:    {Label: "Notes", Color: "#06D6A0", CalendarColorID: "10"},
	CategoryGaming:   {Label: "Gaming Platform App", Color: "#FFD166", CalendarColorID: "5"},
	CategoryPersonal: {Label: "Personal", Color: "#F15BB5", CalendarColorID: "4"},
	CategoryWork:     {Label: "Work", Color: "#3A86FF", CalendarColorID: "1"},
}

// Categories lists the known categories in a stable order.
func Categories() []Category {
	return []Category{
		CategorySport, CategoryMedical, CategoryRent, CategoryNotes,
		CategoryGaming, CategoryPersonal, CategoryWork,
	}
}

// Info returns the display attributes of c. Unknown categories get a neutral entry.
func (c Category) Info() CategoryInfo {
	if info, ok := categories[c]; ok {
		return info
	}
	return CategoryInfo{Label: string(c), Color: "#888888", CalendarColorID: DefaultCalendarColorID}
}

// CalendarColorID returns the calendar colorId for c, or the default for unmapped categories.
func (c Category) CalendarColorID() string {
	return c.Info().CalendarColorID
}

func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := categories[c]
	return c, ok
}
