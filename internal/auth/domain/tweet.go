package domain

import "time"

// Tweet is a short post by a user.
type Tweet struct {
	ID        string
	AuthorID  string
	Content   string
	Media     *Media
	CreatedAt time.Time
}

// Media is an uploaded attachment, hosted by the upload provider.
type Media struct {
	URL  string
	Type string // "image" or "video"
}
