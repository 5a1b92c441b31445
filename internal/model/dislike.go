package model

import "time"

// DislikeRecord is a single row in the post_dislikes table. At most one record
// exists per post URN; the record is deleted when its count reaches zero.
type DislikeRecord struct {
	PostURN      string    `json:"post_urn"`
	DislikeCount int       `json:"dislike_count"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// InsertPayload is the request body for creating a dislike record.
type InsertPayload struct {
	PostURN      string `json:"post_urn"`
	DislikeCount int    `json:"dislike_count"`
}

// UpdatePayload is the request body for patching a dislike record.
type UpdatePayload struct {
	DislikeCount int       `json:"dislike_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StatsResponse summarizes the counter set for the settings surface.
type StatsResponse struct {
	TotalDislikes int `json:"totalDislikes"`
	PostsDisliked int `json:"postsDisliked"`
}
