// Package models defines server-side data models persisted in the database.
package models

import "time"

// Post is a blog post. Cover holds the id of the attached cover asset in the
// object store, or the empty string when the post has no cover. A non-empty
// Cover must only ever reference an asset that has been fully written.
type Post struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Content string `json:"content"`
	Cover   string `json:"cover,omitempty"`

	// AuthorID references the owning user; Author is populated on reads
	// that expand the reference.
	AuthorID string  `json:"authorId"`
	Author   *Author `json:"author,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Author is the expanded author reference returned with posts.
type Author struct {
	ID       string `json:"id"`
	UserName string `json:"username"`
}
