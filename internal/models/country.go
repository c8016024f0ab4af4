package models

// Country is a lookup-table entry referenced by profiles
type Country struct {
	ID           int64  `json:"id" db:"id"`
	Abbreviation string `json:"abbreviation" db:"abbreviation"`
	Name         string `json:"name" db:"name"`
}
