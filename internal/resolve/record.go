// Package resolve builds address-to-FQDN consistency records by checking a
// computed canonical name against live forward and reverse DNS.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/martinsuchenak/fqdngen/internal/log"
	"github.com/martinsuchenak/fqdngen/internal/model"
)

var (
	// ErrInvalidAddress means the supplied address does not parse as IPv4.
	ErrInvalidAddress = errors.New("invalid IPv4 address")
	// ErrInvalidHostname means the hostname is empty after trimming.
	ErrInvalidHostname = errors.New("invalid hostname")
)

const defaultLookupTimeout = 5 * time.Second

// Build validates the address and hostname, applies the domain policy, and
// performs the forward and reverse lookups exactly once. The returned record
// is frozen; lookup failures are recorded as not_found statuses, never as
// errors.
//
// domain is optional: a nil pointer and a pointer to an empty string both
// fall back to settings.DefaultDomain, the latter with an informational note.
func Build(ctx context.Context, r Resolver, settings model.Settings, ipAddress, hostname string, domain *string) (*model.Record, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ipAddress))
	if err != nil || !addr.Is4() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, ipAddress)
	}
	ip := addr.String()

	hostname = strings.ToLower(strings.TrimSpace(hostname))
	if hostname == "" {
		return nil, fmt.Errorf("%w: empty after trimming", ErrInvalidHostname)
	}

	dom := settings.DefaultDomain
	if domain != nil {
		if trimmed := strings.ToLower(strings.TrimSpace(*domain)); trimmed != "" {
			dom = trimmed
		} else {
			log.Info("Zero-length domain provided, using default", "hostname", hostname, "default_domain", settings.DefaultDomain)
		}
	}
	if dom == "" {
		return nil, fmt.Errorf("no domain supplied for %q and no default domain configured", hostname)
	}

	record := &model.Record{
		IPAddress: ip,
		Hostname:  hostname,
		Domain:    dom,
		FullName:  hostname + "." + dom,
		PTRRecord: reversePointer(addr),
	}

	timeout := settings.LookupTimeout
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}

	record.Forward = forwardLookup(ctx, r, timeout, record.FullName, ip)
	record.Reverse = reverseLookup(ctx, r, timeout, record.FullName, hostname, ip, settings.PreferInterfacePTR)

	return record, nil
}

// forwardLookup resolves the full name and classifies the answer against the
// expected address. With multiple A records the lookup counts as a match if
// any of them equals the expected address.
func forwardLookup(ctx context.Context, r Resolver, timeout time.Duration, fullName, ip string) model.LookupResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addrs, err := r.LookupHost(ctx, fullName)
	if err != nil || len(addrs) == 0 {
		log.Debug("Forward lookup returned nothing", "full_name", fullName, "error", err)
		return model.LookupResult{Status: model.StatusNotFound}
	}

	for _, a := range addrs {
		if a == ip {
			return model.LookupResult{Status: model.StatusMatches, ExistingValue: a}
		}
	}
	return model.LookupResult{Status: model.StatusDiffers, ExistingValue: addrs[0]}
}

// reverseLookup resolves the address back to a name and classifies it. A name
// prefixed "<hostname>-" is an interface-level PTR under the same host; when
// preferInterfacePTR is set it is accepted as already correct.
func reverseLookup(ctx context.Context, r Resolver, timeout time.Duration, fullName, hostname, ip string, preferInterfacePTR bool) model.LookupResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	names, err := r.LookupAddr(ctx, ip)
	if err != nil || len(names) == 0 {
		log.Debug("Reverse lookup returned nothing", "ip", ip, "error", err)
		return model.LookupResult{Status: model.StatusNotFound}
	}

	// net.Resolver returns PTR names rooted with a trailing dot.
	name := strings.ToLower(strings.TrimSuffix(names[0], "."))

	switch {
	case name == fullName:
		return model.LookupResult{Status: model.StatusMatches, ExistingValue: name}
	case preferInterfacePTR && strings.HasPrefix(name, hostname+"-"):
		return model.LookupResult{Status: model.StatusPreferredAlternate, ExistingValue: name}
	default:
		return model.LookupResult{Status: model.StatusDiffers, ExistingValue: name}
	}
}

// reversePointer returns the in-addr.arpa name for an IPv4 address.
func reversePointer(addr netip.Addr) string {
	o := addr.As4()
	return fmt.Sprintf("%d.%d.%d.%d.in-addr.arpa", o[3], o[2], o[1], o[0])
}
