// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

// Package flights wraps the flight-offer search API (Amadeus wire
// format): OAuth2 client-credentials token handling, offer search and
// location keyword lookup, behind a circuit breaker and a client-side
// rate limiter. Upstream failures surface as ErrUpstream so the API
// edge can answer 502.
package flights

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/farescope/farescope/internal/config"
	"github.com/farescope/farescope/internal/logging"
	"github.com/farescope/farescope/internal/metrics"
	"github.com/farescope/farescope/internal/models"
)

// ErrUpstream marks token or API failures from the flight provider.
var ErrUpstream = errors.New("flight provider unavailable")

// Offer is one priced flight offer.
type Offer struct {
	ID          string    `json:"id"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Carrier     string    `json:"carrier"`
	Stops       int       `json:"stops"`
	Departure   time.Time `json:"departure"`
	Arrival     time.Time `json:"arrival"`
	Duration    string    `json:"duration"`
	BookingLink string    `json:"booking_link,omitempty"`
}

// Location is one airport or city match from the keyword lookup.
type Location struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	CityName    string `json:"city_name"`
	CountryCode string `json:"country_code"`
	Type        string `json:"type"`
}

// Client talks to the flight-offer API.
type Client struct {
	cfg     *config.FlightsConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	limiter *rate.Limiter

	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient builds a client from configuration. The breaker opens after
// a 60% failure rate over at least 10 requests and probes recovery
// after one minute.
func NewClient(cfg *config.FlightsConfig) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "flight-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached token, refreshing it when less than a
// minute of validity remains.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" && time.Until(c.tokenExpiry) > time.Minute {
		return c.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	metrics.RecordUpstream("flight-token", err)
	if err != nil {
		return "", fmt.Errorf("%w: token request: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrUpstream, resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("%w: decoding token: %v", ErrUpstream, err)
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return c.token, nil
}

// get performs an authenticated GET through the limiter and breaker.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		token, err := c.accessToken(ctx)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.cfg.BaseURL+path+"?"+query.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.http.Do(req)
		metrics.RecordUpstream("flight-api", err)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %s returned %d", ErrUpstream, path, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrUpstream)
		}
		return nil, err
	}
	return body, nil
}

// amadeusOffersResponse mirrors the subset of the offer-search payload
// Farescope consumes.
type amadeusOffersResponse struct {
	Data []struct {
		ID    string `json:"id"`
		Price struct {
			GrandTotal string `json:"grandTotal"`
			Currency   string `json:"currency"`
		} `json:"price"`
		ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
		Itineraries            []struct {
			Duration string `json:"duration"`
			Segments []struct {
				Departure struct {
					At string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					At string `json:"at"`
				} `json:"arrival"`
			} `json:"segments"`
		} `json:"itineraries"`
	} `json:"data"`
}

// SearchOffers queries flight offers for the given request.
func (c *Client) SearchOffers(ctx context.Context, req *models.FlightSearchRequest) ([]Offer, error) {
	query := url.Values{
		"originLocationCode":      {req.Origin},
		"destinationLocationCode": {req.Destination},
		"departureDate":           {req.DepartDate},
		"adults":                  {strconv.Itoa(req.Adults)},
	}
	if req.ReturnDate != "" {
		query.Set("returnDate", req.ReturnDate)
	}
	if req.Children > 0 {
		query.Set("children", strconv.Itoa(req.Children))
	}
	if req.TravelClass != "" {
		query.Set("travelClass", req.TravelClass)
	}
	if req.Currency != "" {
		query.Set("currencyCode", req.Currency)
	}
	if req.NonStop {
		query.Set("nonStop", "true")
	}
	max := req.Max
	if max <= 0 {
		max = 20
	}
	query.Set("max", strconv.Itoa(max))

	body, err := c.get(ctx, "/v2/shopping/flight-offers", query)
	if err != nil {
		return nil, err
	}

	var payload amadeusOffersResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding offers: %v", ErrUpstream, err)
	}

	offers := make([]Offer, 0, len(payload.Data))
	for _, d := range payload.Data {
		offer := Offer{ID: d.ID, Currency: d.Price.Currency}
		offer.Price, _ = strconv.ParseFloat(d.Price.GrandTotal, 64)
		if len(d.ValidatingAirlineCodes) > 0 {
			offer.Carrier = d.ValidatingAirlineCodes[0]
		}
		if len(d.Itineraries) > 0 {
			it := d.Itineraries[0]
			offer.Duration = it.Duration
			offer.Stops = len(it.Segments) - 1
			if len(it.Segments) > 0 {
				offer.Departure, _ = time.Parse("2006-01-02T15:04:05", it.Segments[0].Departure.At)
				offer.Arrival, _ = time.Parse("2006-01-02T15:04:05", it.Segments[len(it.Segments)-1].Arrival.At)
			}
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

type amadeusLocationsResponse struct {
	Data []struct {
		SubType  string `json:"subType"`
		Name     string `json:"name"`
		IATACode string `json:"iataCode"`
		Address  struct {
			CityName    string `json:"cityName"`
			CountryCode string `json:"countryCode"`
		} `json:"address"`
	} `json:"data"`
}

// SearchLocations looks up airports and cities matching keyword.
func (c *Client) SearchLocations(ctx context.Context, keyword string, limit int) ([]Location, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := url.Values{
		"subType":     {"AIRPORT,CITY"},
		"keyword":     {keyword},
		"page[limit]": {strconv.Itoa(limit)},
	}

	body, err := c.get(ctx, "/v1/reference-data/locations", query)
	if err != nil {
		return nil, err
	}

	var payload amadeusLocationsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding locations: %v", ErrUpstream, err)
	}

	locations := make([]Location, 0, len(payload.Data))
	for _, d := range payload.Data {
		locations = append(locations, Location{
			Code:        d.IATACode,
			Name:        d.Name,
			CityName:    d.Address.CityName,
			CountryCode: d.Address.CountryCode,
			Type:        strings.ToLower(d.SubType),
		})
	}
	return locations, nil
}
