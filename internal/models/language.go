package models

// Language is a lookup-table entry for spoken/studied languages
type Language struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// CEFR-style proficiency codes, plus NV for native speakers
const (
	LevelBeginner          = "A1"
	LevelPreIntermediate   = "A2"
	LevelIntermediate      = "B1"
	LevelUpperIntermediate = "B2"
	LevelAdvanced          = "C1"
	LevelProficiency       = "C2"
	LevelNative            = "NV"
)

var levelLabels = map[string]string{
	LevelBeginner:          "Beginner",
	LevelPreIntermediate:   "Pre-Intermediate",
	LevelIntermediate:      "Intermediate",
	LevelUpperIntermediate: "Upper-Intermediate",
	LevelAdvanced:          "Advanced",
	LevelProficiency:       "Proficiency",
	LevelNative:            "Native",
}

// ValidLevel reports whether code is a known proficiency code.
func ValidLevel(code string) bool {
	_, ok := levelLabels[code]
	return ok
}

// LevelLabel returns the display label for a proficiency code.
func LevelLabel(code string) string {
	return levelLabels[code]
}

// LanguageLevel links a profile to a studied language at a given level
type LanguageLevel struct {
	ProfileID  int64  `json:"profileId" db:"profile_id"`
	LanguageID int64  `json:"languageId" db:"language_id"`
	Language   string `json:"language" db:"language"`
	Level      string `json:"level" db:"level"`
}
