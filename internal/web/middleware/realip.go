package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
)

type clientIPKey struct{}

// TrustedRealIP resolves the client address once per request and stores it
// for ClientIP. The connection address is used unless it belongs to one of
// the trusted proxies, in which case X-Forwarded-For is walked from the
// right and the first hop that is not itself a trusted proxy wins. Entries
// a client prepends to the header are never reached that way.
//
// Entries may be CIDRs or single addresses. Invalid ones are logged and
// skipped.
func TrustedRealIP(trusted []string) func(http.Handler) http.Handler {
	proxies := parseProxies(trusted)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := parseRemote(r.RemoteAddr)
			if addr.IsValid() && isProxy(addr, proxies) {
				if client, ok := forwardedClient(r.Header.Values("X-Forwarded-For"), proxies); ok {
					addr = client
				}
			}
			if addr.IsValid() {
				r = r.WithContext(context.WithValue(r.Context(), clientIPKey{}, addr))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the address resolved by TrustedRealIP. Without it, the
// host part of RemoteAddr is returned.
func ClientIP(r *http.Request) string {
	if addr, ok := r.Context().Value(clientIPKey{}).(netip.Addr); ok {
		return addr.String()
	}
	if addr := parseRemote(r.RemoteAddr); addr.IsValid() {
		return addr.String()
	}
	return r.RemoteAddr
}

func parseProxies(list []string) []netip.Prefix {
	var out []netip.Prefix
	for _, entry := range list {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if p, err := netip.ParsePrefix(entry); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(entry); err == nil {
			a = a.Unmap()
			out = append(out, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		slog.Warn("realip: invalid trusted proxy, skipping", "entry", entry)
	}
	return out
}

// parseRemote accepts "host:port" or a bare address.
func parseRemote(s string) netip.Addr {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap()
	}
	a, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}
	}
	return a.Unmap()
}

func isProxy(addr netip.Addr, proxies []netip.Prefix) bool {
	for _, p := range proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// forwardedClient returns the rightmost X-Forwarded-For hop outside the
// trusted proxies. A malformed hop stops the walk with no result. When
// every hop is a proxy the leftmost one is returned.
func forwardedClient(values []string, proxies []netip.Prefix) (netip.Addr, bool) {
	var hops []string
	for _, v := range values {
		hops = append(hops, strings.Split(v, ",")...)
	}

	var last netip.Addr
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		addr := parseRemote(hop)
		if !addr.IsValid() {
			return netip.Addr{}, false
		}
		if !isProxy(addr, proxies) {
			return addr, true
		}
		last = addr
	}
	return last, last.IsValid()
}
