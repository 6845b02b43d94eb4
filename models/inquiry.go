package models

import "time"

type Inquiry struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Topic       string     `json:"topic"`
	Description string     `json:"description"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// RemoveInquiry drops the inquiry with id from list, keeping order.
func RemoveInquiry(list []Inquiry, id string) []Inquiry {
	out := list[:0:0]
	for _, in := range list {
		if in.ID != id {
			out = append(out, in)
		}
	}
	return out
}
