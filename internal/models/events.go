// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package models

import "time"

// Trip types accepted by search and click-out events.
const (
	TripOneWay    = "one_way"
	TripRoundTrip = "round_trip"
	TripMultiCity = "multi_city"
)

// SearchEvent is an append-only record of one flight search. Rows are
// written once at ingestion and never updated.
type SearchEvent struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	TripType    string    `json:"trip_type"`
	TravelClass string    `json:"travel_class"`
	Adults      int       `json:"adults"`
	Children    int       `json:"children"`
	DeviceType  string    `json:"device_type"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	MaskedIP    string    `json:"masked_ip"`
	CountryCode string    `json:"country_code"`
	Region      string    `json:"region"`
	SessionID   string    `json:"session_id"`
	Referrer    string    `json:"referrer"`
	UTMSource   string    `json:"utm_source"`
	UTMMedium   string    `json:"utm_medium"`
	UTMCampaign string    `json:"utm_campaign"`
}

// ClickoutEvent is an append-only record of a user leaving toward a
// booking partner.
type ClickoutEvent struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	TripType    string    `json:"trip_type"`
	Partner     string    `json:"partner"`
	MaskedIP    string    `json:"masked_ip"`
	SessionID   string    `json:"session_id"`
	UTMSource   string    `json:"utm_source"`
	UTMMedium   string    `json:"utm_medium"`
	UTMCampaign string    `json:"utm_campaign"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	DeepLink    string    `json:"deep_link"`
}
