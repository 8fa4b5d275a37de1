package model

// Facility is a physical venue offering bookable sessions.  Facilities are
// static reference data looked up by Slug, which is stable and URL-safe.
//
// Fields:
//
//	ID          – internal identifier, stable across releases.
//	Slug        – URL-friendly unique key used in routes and session IDs.
//	Name        – display name.
//	City, State – optional location fields.
//	CourtsLabel – optional display label such as "Courts 1–8".
type Facility struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	CourtsLabel string `json:"courtsLabel,omitempty"`
}
