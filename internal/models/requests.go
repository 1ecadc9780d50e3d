// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package models

// LoginRequest authenticates a user by username and password.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=1,max=256"`
}

// CreateUserRequest creates an administrative account.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=256"`
	Role     string `json:"role" validate:"required,oneof=admin editor viewer"`
}

// UpdateUserRequest updates role or active state. Nil fields are left
// unchanged.
type UpdateUserRequest struct {
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Role   *string `json:"role,omitempty" validate:"omitempty,oneof=admin editor viewer"`
	Active *bool   `json:"active,omitempty"`
}

// PageRequest creates or replaces a CMS page.
type PageRequest struct {
	Slug    string `json:"slug" validate:"required,max=128"`
	Title   string `json:"title" validate:"required,max=256"`
	Content string `json:"content" validate:"required"`
	Status  string `json:"status" validate:"required,oneof=draft published"`
}

// NotifyRequest creates a notification for one user.
type NotifyRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Type   string `json:"type" validate:"required,max=64"`
	Title  string `json:"title" validate:"required,max=256"`
	Body   string `json:"body" validate:"required,max=4096"`
}

// BroadcastRequest pushes a notification to a user list, or to every
// connected user when UserIDs is empty.
type BroadcastRequest struct {
	UserIDs []string `json:"user_ids"`
	Type    string   `json:"type" validate:"required,max=64"`
	Title   string   `json:"title" validate:"required,max=256"`
	Body    string   `json:"body" validate:"required,max=4096"`
}

// FlightSearchRequest queries the flight-offer API.
type FlightSearchRequest struct {
	Origin      string `json:"origin" validate:"required,len=3,alpha"`
	Destination string `json:"destination" validate:"required,len=3,alpha"`
	DepartDate  string `json:"depart_date" validate:"required,datetime=2006-01-02"`
	ReturnDate  string `json:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Adults      int    `json:"adults" validate:"required,min=1,max=9"`
	Children    int    `json:"children" validate:"min=0,max=9"`
	TravelClass string `json:"travel_class,omitempty" validate:"omitempty,oneof=ECONOMY PREMIUM_ECONOMY BUSINESS FIRST"`
	Currency    string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	NonStop     bool   `json:"non_stop,omitempty"`
	Max         int    `json:"max,omitempty" validate:"omitempty,min=1,max=250"`
}

// TrackSearchRequest ingests one search event. Client context fields are
// optional; missing values are stored as empty strings.
type TrackSearchRequest struct {
	Origin      string `json:"origin" validate:"required,len=3,alpha"`
	Destination string `json:"destination" validate:"required,len=3,alpha"`
	TripType    string `json:"trip_type" validate:"required,oneof=one_way round_trip multi_city"`
	TravelClass string `json:"travel_class,omitempty" validate:"omitempty,max=32"`
	Adults      int    `json:"adults" validate:"min=0,max=9"`
	Children    int    `json:"children" validate:"min=0,max=9"`
	DeviceType  string `json:"device_type,omitempty" validate:"omitempty,max=32"`
	Browser     string `json:"browser,omitempty" validate:"omitempty,max=64"`
	OS          string `json:"os,omitempty" validate:"omitempty,max=64"`
	CountryCode string `json:"country_code,omitempty" validate:"omitempty,len=2,alpha"`
	Region      string `json:"region,omitempty" validate:"omitempty,max=64"`
	SessionID   string `json:"session_id" validate:"required,max=128"`
	Referrer    string `json:"referrer,omitempty" validate:"omitempty,max=512"`
	UTMSource   string `json:"utm_source,omitempty" validate:"omitempty,max=128"`
	UTMMedium   string `json:"utm_medium,omitempty" validate:"omitempty,max=128"`
	UTMCampaign string `json:"utm_campaign,omitempty" validate:"omitempty,max=128"`
}

// TrackClickoutRequest ingests one click-out event.
type TrackClickoutRequest struct {
	Origin      string  `json:"origin" validate:"required,len=3,alpha"`
	Destination string  `json:"destination" validate:"required,len=3,alpha"`
	TripType    string  `json:"trip_type" validate:"required,oneof=one_way round_trip multi_city"`
	Partner     string  `json:"partner" validate:"required,max=64"`
	SessionID   string  `json:"session_id" validate:"required,max=128"`
	UTMSource   string  `json:"utm_source,omitempty" validate:"omitempty,max=128"`
	UTMMedium   string  `json:"utm_medium,omitempty" validate:"omitempty,max=128"`
	UTMCampaign string  `json:"utm_campaign,omitempty" validate:"omitempty,max=128"`
	Price       float64 `json:"price" validate:"min=0"`
	Currency    string  `json:"currency" validate:"required,len=3,alpha"`
	DeepLink    string  `json:"deep_link,omitempty" validate:"omitempty,max=2048,url"`
}

// CampaignRequest creates an email campaign.
type CampaignRequest struct {
	Subject    string   `json:"subject" validate:"required,max=256"`
	Body       string   `json:"body" validate:"required"`
	Recipients []string `json:"recipients" validate:"required,min=1,max=10000,dive,email"`
}
