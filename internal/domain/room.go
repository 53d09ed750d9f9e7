package domain

import "time"

// Room is a pass-through record from the content store. Field shapes are
// owned by the store; this service only decodes and re-serializes them.
type Room struct {
	ID           string   `json:"_id"`
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	SpecialNote  string   `json:"specialNote,omitempty"`
	Type         string   `json:"type,omitempty"`
	Price        float64  `json:"price"`
	Discount     float64  `json:"discount,omitempty"`
	NumberOfBeds int      `json:"numberOfBeds,omitempty"`
	Dimension    string   `json:"dimension,omitempty"`
	CoverImage   string   `json:"coverImage,omitempty"`
	Images       []string `json:"images,omitempty"`
	Amenities    []string `json:"offeredAmenities,omitempty"`
	IsFeatured   bool     `json:"isFeatured"`
	IsBooked     bool     `json:"isBooked"`
}

// Review belongs to a room; free-form content plus a rating.
type Review struct {
	ID        string    `json:"_id"`
	RoomID    string    `json:"roomId"`
	Author    string    `json:"author"`
	Rating    float64   `json:"rating"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"_createdAt"`
}
