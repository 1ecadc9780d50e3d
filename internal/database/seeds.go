// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

package database

import "github.com/farescope/farescope/internal/models"

// DefaultReferenceData returns the built-in reference tables seeded at
// startup. The set covers the busiest IATA airports and carriers;
// deployments with wider needs reseed through SeedReferenceData.
func DefaultReferenceData() ([]models.Airport, []models.City, []models.Country, []models.Airline) {
	airports := []models.Airport{
		{Code: "ATL", Name: "Hartsfield-Jackson Atlanta International", City: "Atlanta", CountryCode: "US", Latitude: 33.6407, Longitude: -84.4277},
		{Code: "LAX", Name: "Los Angeles International", City: "Los Angeles", CountryCode: "US", Latitude: 33.9416, Longitude: -118.4085},
		{Code: "ORD", Name: "O'Hare International", City: "Chicago", CountryCode: "US", Latitude: 41.9742, Longitude: -87.9073},
		{Code: "JFK", Name: "John F. Kennedy International", City: "New York", CountryCode: "US", Latitude: 40.6413, Longitude: -73.7781},
		{Code: "SFO", Name: "San Francisco International", City: "San Francisco", CountryCode: "US", Latitude: 37.6213, Longitude: -122.3790},
		{Code: "MIA", Name: "Miami International", City: "Miami", CountryCode: "US", Latitude: 25.7959, Longitude: -80.2870},
		{Code: "LHR", Name: "Heathrow", City: "London", CountryCode: "GB", Latitude: 51.4700, Longitude: -0.4543},
		{Code: "LGW", Name: "Gatwick", City: "London", CountryCode: "GB", Latitude: 51.1537, Longitude: -0.1821},
		{Code: "CDG", Name: "Charles de Gaulle", City: "Paris", CountryCode: "FR", Latitude: 49.0097, Longitude: 2.5479},
		{Code: "ORY", Name: "Orly", City: "Paris", CountryCode: "FR", Latitude: 48.7262, Longitude: 2.3652},
		{Code: "FRA", Name: "Frankfurt am Main", City: "Frankfurt", CountryCode: "DE", Latitude: 50.0379, Longitude: 8.5622},
		{Code: "MUC", Name: "Munich", City: "Munich", CountryCode: "DE", Latitude: 48.3537, Longitude: 11.7750},
		{Code: "BER", Name: "Berlin Brandenburg", City: "Berlin", CountryCode: "DE", Latitude: 52.3667, Longitude: 13.5033},
		{Code: "AMS", Name: "Schiphol", City: "Amsterdam", CountryCode: "NL", Latitude: 52.3105, Longitude: 4.7683},
		{Code: "MAD", Name: "Adolfo Suárez Madrid-Barajas", City: "Madrid", CountryCode: "ES", Latitude: 40.4983, Longitude: -3.5676},
		{Code: "BCN", Name: "Josep Tarradellas Barcelona-El Prat", City: "Barcelona", CountryCode: "ES", Latitude: 41.2974, Longitude: 2.0833},
		{Code: "FCO", Name: "Leonardo da Vinci-Fiumicino", City: "Rome", CountryCode: "IT", Latitude: 41.8003, Longitude: 12.2389},
		{Code: "ZRH", Name: "Zurich", City: "Zurich", CountryCode: "CH", Latitude: 47.4647, Longitude: 8.5492},
		{Code: "VIE", Name: "Vienna International", City: "Vienna", CountryCode: "AT", Latitude: 48.1103, Longitude: 16.5697},
		{Code: "IST", Name: "Istanbul", City: "Istanbul", CountryCode: "TR", Latitude: 41.2753, Longitude: 28.7519},
		{Code: "DXB", Name: "Dubai International", City: "Dubai", CountryCode: "AE", Latitude: 25.2532, Longitude: 55.3657},
		{Code: "DOH", Name: "Hamad International", City: "Doha", CountryCode: "QA", Latitude: 25.2609, Longitude: 51.6138},
		{Code: "SIN", Name: "Changi", City: "Singapore", CountryCode: "SG", Latitude: 1.3644, Longitude: 103.9915},
		{Code: "HND", Name: "Haneda", City: "Tokyo", CountryCode: "JP", Latitude: 35.5494, Longitude: 139.7798},
		{Code: "NRT", Name: "Narita International", City: "Tokyo", CountryCode: "JP", Latitude: 35.7719, Longitude: 140.3929},
		{Code: "ICN", Name: "Incheon International", City: "Seoul", CountryCode: "KR", Latitude: 37.4602, Longitude: 126.4407},
		{Code: "HKG", Name: "Hong Kong International", City: "Hong Kong", CountryCode: "HK", Latitude: 22.3080, Longitude: 113.9185},
		{Code: "BKK", Name: "Suvarnabhumi", City: "Bangkok", CountryCode: "TH", Latitude: 13.6900, Longitude: 100.7501},
		{Code: "SYD", Name: "Sydney Kingsford Smith", City: "Sydney", CountryCode: "AU", Latitude: -33.9399, Longitude: 151.1753},
		{Code: "GRU", Name: "São Paulo-Guarulhos International", City: "São Paulo", CountryCode: "BR", Latitude: -23.4356, Longitude: -46.4731},
		{Code: "MEX", Name: "Benito Juárez International", City: "Mexico City", CountryCode: "MX", Latitude: 19.4363, Longitude: -99.0721},
		{Code: "YYZ", Name: "Toronto Pearson International", City: "Toronto", CountryCode: "CA", Latitude: 43.6777, Longitude: -79.6248},
	}

	cities := []models.City{
		{Code: "NYC", Name: "New York", CountryCode: "US"},
		{Code: "LON", Name: "London", CountryCode: "GB"},
		{Code: "PAR", Name: "Paris", CountryCode: "FR"},
		{Code: "BER", Name: "Berlin", CountryCode: "DE"},
		{Code: "ROM", Name: "Rome", CountryCode: "IT"},
		{Code: "TYO", Name: "Tokyo", CountryCode: "JP"},
		{Code: "SAO", Name: "São Paulo", CountryCode: "BR"},
		{Code: "YTO", Name: "Toronto", CountryCode: "CA"},
	}

	countries := []models.Country{
		{Code: "US", Name: "United States", Currency: "USD", Region: "Americas"},
		{Code: "CA", Name: "Canada", Currency: "CAD", Region: "Americas"},
		{Code: "MX", Name: "Mexico", Currency: "MXN", Region: "Americas"},
		{Code: "BR", Name: "Brazil", Currency: "BRL", Region: "Americas"},
		{Code: "GB", Name: "United Kingdom", Currency: "GBP", Region: "Europe"},
		{Code: "FR", Name: "France", Currency: "EUR", Region: "Europe"},
		{Code: "DE", Name: "Germany", Currency: "EUR", Region: "Europe"},
		{Code: "NL", Name: "Netherlands", Currency: "EUR", Region: "Europe"},
		{Code: "ES", Name: "Spain", Currency: "EUR", Region: "Europe"},
		{Code: "IT", Name: "Italy", Currency: "EUR", Region: "Europe"},
		{Code: "CH", Name: "Switzerland", Currency: "CHF", Region: "Europe"},
		{Code: "AT", Name: "Austria", Currency: "EUR", Region: "Europe"},
		{Code: "TR", Name: "Türkiye", Currency: "TRY", Region: "Europe"},
		{Code: "AE", Name: "United Arab Emirates", Currency: "AED", Region: "Middle East"},
		{Code: "QA", Name: "Qatar", Currency: "QAR", Region: "Middle East"},
		{Code: "SG", Name: "Singapore", Currency: "SGD", Region: "Asia-Pacific"},
		{Code: "JP", Name: "Japan", Currency: "JPY", Region: "Asia-Pacific"},
		{Code: "KR", Name: "South Korea", Currency: "KRW", Region: "Asia-Pacific"},
		{Code: "HK", Name: "Hong Kong", Currency: "HKD", Region: "Asia-Pacific"},
		{Code: "TH", Name: "Thailand", Currency: "THB", Region: "Asia-Pacific"},
		{Code: "AU", Name: "Australia", Currency: "AUD", Region: "Asia-Pacific"},
	}

	airlines := []models.Airline{
		{Code: "AA", Name: "American Airlines"},
		{Code: "DL", Name: "Delta Air Lines"},
		{Code: "UA", Name: "United Airlines"},
		{Code: "WN", Name: "Southwest Airlines"},
		{Code: "AC", Name: "Air Canada"},
		{Code: "BA", Name: "British Airways"},
		{Code: "AF", Name: "Air France"},
		{Code: "KL", Name: "KLM Royal Dutch Airlines"},
		{Code: "LH", Name: "Lufthansa"},
		{Code: "LX", Name: "Swiss International Air Lines"},
		{Code: "OS", Name: "Austrian Airlines"},
		{Code: "IB", Name: "Iberia"},
		{Code: "AZ", Name: "ITA Airways"},
		{Code: "TK", Name: "Turkish Airlines"},
		{Code: "EK", Name: "Emirates"},
		{Code: "QR", Name: "Qatar Airways"},
		{Code: "SQ", Name: "Singapore Airlines"},
		{Code: "NH", Name: "All Nippon Airways"},
		{Code: "JL", Name: "Japan Airlines"},
		{Code: "KE", Name: "Korean Air"},
		{Code: "CX", Name: "Cathay Pacific"},
		{Code: "QF", Name: "Qantas"},
		{Code: "LA", Name: "LATAM Airlines"},
		{Code: "AM", Name: "Aeroméxico"},
	}

	return airports, cities, countries, airlines
}
