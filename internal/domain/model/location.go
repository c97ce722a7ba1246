// Package model contains domain models passed between layers.
package model

// Location is one of the canonical study locations the service reports on.
type Location string

// Canonical locations, in catalog order.
const (
	IKBLC     Location = "IKBLC"
	Koerner   Location = "Koerner"
	DavidLam  Location = "David Lam"
	Education Location = "Education"
	Woodward  Location = "Woodward"
	Law       Location = "Law"
	Asian     Location = "Asian"
	Xwi7xwa   Location = "Xwi7xwa"
	Chapman   Location = "Chapman"
)

var locations = []Location{IKBLC, Koerner, DavidLam, Education, Woodward, Law, Asian, Xwi7xwa, Chapman}

// Locations returns the canonical locations in catalog order.
func Locations() []Location {
	out := make([]Location, len(locations))
	copy(out, locations)
	return out
}

// Valid reports whether l is a canonical location.
func (l Location) Valid() bool {
	for _, c := range locations {
		if c == l {
			return true
		}
	}
	return false
}

func (l Location) String() string { return string(l) }

// Spot is a catalog entry shown on the campus map.
type Spot struct {
	ID       int      `json:"id"`
	Name     Location `json:"name"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Features []string `json:"features"` // e.g. "quiet", "outlets"
}

var catalog = []Spot{
	{ID: 1, Name: IKBLC, Lat: 49.267938, Lng: -123.252398, Features: []string{"quiet", "outlets"}},
	{ID: 2, Name: Koerner, Lat: 49.268412, Lng: -123.254246, Features: []string{"quiet", "outlets"}},
	{ID: 3, Name: DavidLam, Lat: 49.264581, Lng: -123.253088, Features: []string{"quiet", "outlets"}},
	{ID: 4, Name: Education, Lat: 49.2661, Lng: -123.2499, Features: []string{"quiet", "outlets"}},
	{ID: 5, Name: Woodward, Lat: 49.262853, Lng: -123.244119, Features: []string{"quiet", "outlets"}},
	{ID: 6, Name: Law, Lat: 49.264216, Lng: -123.255546, Features: []string{"quiet", "outlets"}},
	{ID: 7, Name: Asian, Lat: 49.268453, Lng: -123.245813, Features: []string{"quiet", "outlets"}},
	{ID: 8, Name: Xwi7xwa, Lat: 49.264150, Lng: -123.245500, Features: []string{"quiet", "cultural"}},
	{ID: 9, Name: Chapman, Lat: 49.267950, Lng: -123.251900, Features: []string{"outlets", "group study"}},
}

// Catalog returns the spot catalog in canonical order.
func Catalog() []Spot {
	out := make([]Spot, len(catalog))
	for i, s := range catalog {
		s.Features = append([]string(nil), s.Features...)
		out[i] = s
	}
	return out
}
