package model

// LookupStatus classifies the outcome of a single DNS lookup against the
// expected value.
type LookupStatus string

const (
	// StatusNotFound means the lookup failed or returned nothing.
	StatusNotFound LookupStatus = "not_found"
	// StatusMatches means the existing record equals the expected value.
	StatusMatches LookupStatus = "matches"
	// StatusPreferredAlternate means a PTR already points at an
	// interface-level name under the same host and is kept as-is.
	StatusPreferredAlternate LookupStatus = "preferred_alternate"
	// StatusDiffers means a record exists but holds a different value.
	StatusDiffers LookupStatus = "differs"
)

// Exists reports whether a record was present in DNS at all.
func (s LookupStatus) Exists() bool {
	return s != StatusNotFound
}

// NeedsUpdate reports whether a record would need to be created or changed
// to match the expected value.
func (s LookupStatus) NeedsUpdate() bool {
	return s == StatusNotFound || s == StatusDiffers
}

// LookupResult is the frozen outcome of one lookup.
type LookupResult struct {
	Status        LookupStatus `json:"status"`
	ExistingValue string       `json:"existing_value,omitempty"`
}

// Record is an immutable address-to-FQDN consistency record. All DNS
// evaluation happens once, while the record is built; nothing mutates it
// afterwards.
type Record struct {
	IPAddress string       `json:"ip_address"`
	Hostname  string       `json:"hostname"`
	Domain    string       `json:"domain"`
	FullName  string       `json:"full_name"`
	PTRRecord string       `json:"ptr_record"`
	Forward   LookupResult `json:"forward_lookup"`
	Reverse   LookupResult `json:"reverse_lookup"`
	Reachable *bool        `json:"reachable,omitempty"` // set only when the ICMP probe ran
}
