package models

import "time"

// Partner is one directed follow/chat-request edge between two profiles.
// The pair (FollowedID, FollowerID) is unique; ResponseDate stays nil
// while the request is pending and is set once accepted. Two profiles can
// chat only when both directional records carry a response date.
type Partner struct {
	FollowedID   int64      `json:"followedId" db:"followed_id"`
	FollowerID   int64      `json:"followerId" db:"follower_id"`
	RequestDate  time.Time  `json:"requestDate" db:"request_date"`
	ResponseDate *time.Time `json:"responseDate,omitempty" db:"response_date"`
}

// Accepted reports whether this directed edge has been responded to.
func (p *Partner) Accepted() bool {
	return p.ResponseDate != nil
}
