package models

// TagArea groups related interest tags
type TagArea struct {
	ID   int64  `json:"id" db:"id"`
	Area string `json:"area" db:"area"`
}

// Tag is a single interest tag attachable to profiles
type Tag struct {
	ID        int64  `json:"id" db:"id"`
	Tag       string `json:"tag" db:"tag"`
	TagAreaID int64  `json:"tagAreaId" db:"tag_area_id"`
}
