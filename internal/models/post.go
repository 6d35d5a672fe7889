package models

import "time"

// Post represents a piece of content owned by a single user. Deleting a
// post only sets the Deleted flag; the row and its tag associations stay
// in the database and every read path filters on Deleted=false.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	Deleted   bool      `json:"deleted"`
	Tags      []Tag     `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tag is a label attached to posts. Tag names are unique and matched
// case-sensitively: "News" and "news" are distinct tags.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
