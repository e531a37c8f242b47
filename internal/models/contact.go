package models

import "time"

type Contact struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Phone       *string   `json:"phone"`
	Email       *string   `json:"email"`
	Position    *string   `json:"position"`
	ClientID    *string   `json:"clientId"`
	CreatedByID *string   `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Client *Client `json:"client,omitempty"`
}

type ContactCreateRequest struct {
	Name     string  `json:"name" binding:"required"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Position *string `json:"position"`
	ClientID *string `json:"clientId"`
}

type ContactUpdateRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Position *string `json:"position"`
	ClientID *string `json:"clientId"`
}

func (r *ContactUpdateRequest) Apply(c *Contact) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Phone != nil {
		c.Phone = r.Phone
	}
	if r.Email != nil {
		c.Email = r.Email
	}
	if r.Position != nil {
		c.Position = r.Position
	}
	if r.ClientID != nil {
		c.ClientID = r.ClientID
	}
}
