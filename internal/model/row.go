package model

import (
	"time"
)

// Row is one raw input entry as delivered by a CSV file or the API.
type Row struct {
	IPAddress      string  `json:"ip_address"`
	DeviceHostname string  `json:"device_hostname"`
	InterfaceName  string  `json:"interface_name,omitempty"`
	// Domain distinguishes "not supplied" (nil) from "supplied but empty"
	// (pointer to ""); both fall back to the default domain, the latter
	// with an informational log note.
	Domain *string `json:"domain,omitempty"`
}

// Settings carries every knob the normalization and resolution pipeline
// recognizes. It is passed explicitly into each call so tests can use
// different tables and flags without touching process-wide state.
type Settings struct {
	DefaultDomain      string            `json:"default_domain"`
	InterfaceMap       map[string]string `json:"interface_map"`
	PreferInterfacePTR bool              `json:"prefer_interface_ptr"`
	Concurrent         bool              `json:"concurrent"`
	Workers            int               `json:"workers"`
	LookupTimeout      time.Duration     `json:"-"`
}

// RowFailure describes one input row that was dropped from the output.
type RowFailure struct {
	Hostname  string `json:"hostname"`
	IPAddress string `json:"ip_address"`
	Reason    string `json:"reason"`
}

// Run is the result of evaluating one batch of rows.
type Run struct {
	ID              string       `json:"id"`
	StartedAt       time.Time    `json:"started_at"`
	CompletedAt     time.Time    `json:"completed_at"`
	DurationSeconds int          `json:"duration_seconds"`
	TotalRows       int          `json:"total_rows"`
	Produced        int          `json:"produced"`
	Skipped         int          `json:"skipped"`
	Records         []*Record    `json:"records,omitempty"`
	Failures        []RowFailure `json:"failures,omitempty"`
}
