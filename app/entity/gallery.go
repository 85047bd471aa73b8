package entity

import "time"

type Category struct {
	ID uint64

	Name        string
	Description string

	// Slug is derived from the name, unique, URL-safe.
	Slug string
}

type Image struct {
	ID uint64

	CategoryID uint64

	// Filename is the name under the media root, e.g. "gallery/ab12cd.jpg".
	Filename string
	Caption  string

	CreatedAt time.Time
}
