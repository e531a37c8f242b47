package models

import "time"

type FeedType string

const (
	FeedRecommendation   FeedType = "RECOMMENDATION"
	FeedClientActivity   FeedType = "CLIENT_ACTIVITY"
	FeedIndustryInfo     FeedType = "INDUSTRY_INFO"
	FeedColleaguesUpdate FeedType = "COLLEAGUES_UPDATE"
)

func (t FeedType) Valid() bool {
	switch t {
	case FeedRecommendation, FeedClientActivity, FeedIndustryInfo, FeedColleaguesUpdate:
		return true
	}
	return false
}

// FeedStatus is a flat enum; any value may follow any other.
type FeedStatus string

const (
	FeedNew             FeedStatus = "NEW"
	FeedCancelled       FeedStatus = "CANCELLED"
	FeedInProgress      FeedStatus = "IN_PROGRESS"
	FeedActionCompleted FeedStatus = "ACTION_COMPLETED"
	FeedClosed          FeedStatus = "CLOSED"
)

func (s FeedStatus) Valid() bool {
	switch s {
	case FeedNew, FeedCancelled, FeedInProgress, FeedActionCompleted, FeedClosed:
		return true
	}
	return false
}

type Feed struct {
	ID              string     `json:"id"`
	Type            FeedType   `json:"type"`
	Status          FeedStatus `json:"status"`
	ActionCall      bool       `json:"actionCall"`
	ActionEmail     bool       `json:"actionEmail"`
	ActionBooking   bool       `json:"actionBooking"`
	ActionTask      bool       `json:"actionTask"`
	Metadata        *string    `json:"metadata"`
	Feedback        *string    `json:"feedback"`
	FeedbackBooking *string    `json:"feedbackBooking"`
	ClientID        *string    `json:"clientId"`
	TaskID          *string    `json:"taskId"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	Client    *Client `json:"client,omitempty"`
	LikeCount int     `json:"likeCount"`
}

// FeedCreateRequest is the allow-list for POST /feed. Omitted action flags
// default to false.
type FeedCreateRequest struct {
	Type          FeedType   `json:"type" binding:"required"`
	Status        FeedStatus `json:"status"`
	ActionCall    *bool      `json:"actionCall"`
	ActionEmail   *bool      `json:"actionEmail"`
	ActionBooking *bool      `json:"actionBooking"`
	ActionTask    *bool      `json:"actionTask"`
	Metadata      *string    `json:"metadata"`
	Feedback      *string    `json:"feedback"`
	ClientID      *string    `json:"clientId"`
	TaskID        *string    `json:"taskId"`
}

type FeedUpdateRequest struct {
	Type            *FeedType   `json:"type"`
	Status          *FeedStatus `json:"status"`
	ActionCall      *bool       `json:"actionCall"`
	ActionEmail     *bool       `json:"actionEmail"`
	ActionBooking   *bool       `json:"actionBooking"`
	ActionTask      *bool       `json:"actionTask"`
	Metadata        *string     `json:"metadata"`
	Feedback        *string     `json:"feedback"`
	FeedbackBooking *string     `json:"feedbackBooking"`
	ClientID        *string     `json:"clientId"`
	TaskID          *string     `json:"taskId"`
}

func (r *FeedUpdateRequest) Apply(f *Feed) {
	if r.Type != nil {
		f.Type = *r.Type
	}
	if r.Status != nil {
		f.Status = *r.Status
	}
	if r.ActionCall != nil {
		f.ActionCall = *r.ActionCall
	}
	if r.ActionEmail != nil {
		f.ActionEmail = *r.ActionEmail
	}
	if r.ActionBooking != nil {
		f.ActionBooking = *r.ActionBooking
	}
	if r.ActionTask != nil {
		f.ActionTask = *r.ActionTask
	}
	if r.Metadata != nil {
		f.Metadata = r.Metadata
	}
	if r.Feedback != nil {
		f.Feedback = r.Feedback
	}
	if r.FeedbackBooking != nil {
		f.FeedbackBooking = r.FeedbackBooking
	}
	if r.ClientID != nil {
		f.ClientID = r.ClientID
	}
	if r.TaskID != nil {
		f.TaskID = r.TaskID
	}
}

// FeedListSettings mirror the feed page filters.
type FeedListSettings struct {
	Type      FeedType
	Status    FeedStatus
	SortOrder SortOrder
}

// BookingRequest is the travel booking form attached to a feed item.
type BookingRequest struct {
	TravellersNumber int    `json:"travellersNumber" binding:"required,min=1"`
	DatesFrom        string `json:"datesFrom" binding:"required"`
	DatesTo          string `json:"datesTo" binding:"required"`
	DepartureCountry string `json:"departureCountry"`
	DepartureCity    string `json:"departureCity"`
	Country          string `json:"country"`
	City             string `json:"city"`
	TravelOption     string `json:"travelOption"`
	IsHotelRequired  bool   `json:"isHotelRequired"`
	OtherPreferences string `json:"otherPreferences"`
}

type Like struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FeedID    string    `json:"feedId"`
	CreatedAt time.Time `json:"createdAt"`
}
