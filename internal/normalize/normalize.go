// Package normalize turns raw device hostnames and vendor interface names
// into canonical short-form DNS labels.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultInterfaceMap maps long-form interface type names to two-letter
// short names. Extend it as new vendor names show up in input data.
var DefaultInterfaceMap = map[string]string{
	"cellular":             "ce",
	"fortygigabitethernet": "fo",
	"fortygige":            "fo",
	"tengigabitethernet":   "te",
	"gigabitethernet":      "gi",
	"fastethernet":         "fa",
	"ethernet":             "et",
	"ge":                   "gi",
	"loopback":             "lo",
	"loop":                 "lo",
	"multilink":            "mu",
	"port-channel":         "po",
	"portchannel":          "po",
	"ether-channel":        "po",
	"etherchannel":         "po",
	"serial":               "se",
	"tunnel":               "tu",
	"vlan":                 "vl",
	"bvi":                  "bv",
}

var (
	// Collapses any run of two or more dashes to a single dash.
	multiDash = regexp.MustCompile(`-{2,}`)
	// Leading interface type: two hyphen-joined letter runs (covers
	// "port-channel") tried before a plain letter run.
	ifaceType = regexp.MustCompile(`^[a-z]+-[a-z]+|^[a-z]+`)
	// Everything from the first digit to the end of the string.
	ifaceNumber = regexp.MustCompile(`[0-9].*`)
)

// UnknownInterfaceTypeError reports an interface type with no entry in the
// abbreviation table. It fails the row it came from, never the whole batch.
type UnknownInterfaceTypeError struct {
	Type string
}

func (e *UnknownInterfaceTypeError) Error() string {
	return fmt.Sprintf("interface type %q not found in interface map", e.Type)
}

// DeviceHostname canonicalizes a raw device hostname: lowercased, any
// embedded domain suffix stripped, underscores converted to dashes, dash
// runs collapsed. An empty result is an input error.
func DeviceHostname(raw string) (string, error) {
	hostname := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(hostname, "."); i >= 0 {
		hostname = hostname[:i]
	}
	hostname = strings.ReplaceAll(hostname, "_", "-")
	hostname = multiDash.ReplaceAllString(hostname, "-")
	if hostname == "" {
		return "", fmt.Errorf("hostname %q is empty after normalization", raw)
	}
	return hostname, nil
}

// InterfaceHostname builds the canonical label for a layer-3 interface:
// <device>-<short-type> or <device>-<short-type>-<number>. The interface
// type must resolve through the abbreviation table; the number, if any,
// passes through with its separators converted to dashes.
func InterfaceHostname(deviceHostname, rawInterface string, table map[string]string) (string, error) {
	iface := strings.ToLower(strings.TrimSpace(rawInterface))
	for _, sep := range []string{"_", ".", ":", "/"} {
		iface = strings.ReplaceAll(iface, sep, "-")
	}
	iface = multiDash.ReplaceAllString(iface, "-")

	ifType := ifaceType.FindString(iface)
	if ifType == "" {
		return "", &UnknownInterfaceTypeError{Type: iface}
	}
	ifNumber := ifaceNumber.FindString(iface)

	short, ok := table[ifType]
	if !ok {
		return "", &UnknownInterfaceTypeError{Type: ifType}
	}

	if ifNumber == "" {
		return deviceHostname + "-" + short, nil
	}
	return deviceHostname + "-" + short + "-" + ifNumber, nil
}
