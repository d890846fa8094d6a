package model

import "time"

type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupDetail is a group plus its resolved members.
type GroupDetail struct {
	Group
	Members []User `json:"members"`
}
