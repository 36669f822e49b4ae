package resolve

import (
	"context"
	"net"
)

// Resolver is the seam between record construction and live DNS. Tests
// inject a fake; production code uses the system resolver.
type Resolver interface {
	// LookupHost resolves a name to its addresses.
	LookupHost(ctx context.Context, host string) ([]string, error)

	// LookupAddr performs a reverse lookup for an address, returning the
	// names mapping to it.
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

type systemResolver struct {
	resolver *net.Resolver
}

// SystemResolver returns a Resolver backed by the system DNS configuration.
func SystemResolver() Resolver {
	return &systemResolver{resolver: net.DefaultResolver}
}

func (r *systemResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	return r.resolver.LookupHost(ctx, host)
}

func (r *systemResolver) LookupAddr(ctx context.Context, addr string) ([]string, error) {
	return r.resolver.LookupAddr(ctx, addr)
}
