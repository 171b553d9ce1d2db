package probe

import (
	"context"
	"errors"
	"net/url"
)

// DNSDiagnoser wraps a Checker and, when a probe fails at the transport level,
// appends the DNS classification of the target host to the reason. It never
// changes the up/down verdict.
type DNSDiagnoser struct {
	Inner    Checker
	Resolver Resolver
}

func NewDNSDiagnoser(inner Checker) *DNSDiagnoser {
	return &DNSDiagnoser{Inner: inner}
}

// Check runs the inner probe. A probe that ran out of time is still
// diagnosed, with the lookup bounded by its own limit; a cancelled one is not.
func (d *DNSDiagnoser) Check(ctx context.Context, target string) Result {
	res := d.Inner.Check(ctx, target)
	if res.Up || res.StatusCode != 0 || errors.Is(ctx.Err(), context.Canceled) {
		return res
	}
	dns := CheckDNS(context.WithoutCancel(ctx), d.Resolver, extractHost(target))
	res.Reason = res.Reason + " dns=" + dns.Class
	return res
}

func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
