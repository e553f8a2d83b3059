package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedRealIP rewrites r.RemoteAddr to the client address a proxy
// reported, but only when the connection comes from one of trustedCIDRs.
// Entries may be CIDRs or single addresses.
//
// X-Forwarded-For is read right to left and the first address outside
// trustedCIDRs wins, so entries a client prepends are never used.
// X-Real-IP is consulted only when X-Forwarded-For is absent.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	trusted := parsePrefixes(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if remote, ok := remoteAddr(r.RemoteAddr); ok && isTrusted(remote, trusted) {
				if client, ok := forwardedClient(r.Header, trusted); ok {
					r.RemoteAddr = client.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parsePrefixes(entries []string) []netip.Prefix {
	var out []netip.Prefix
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if p, err := netip.ParsePrefix(entry); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			slog.Warn("realip: invalid trusted proxy CIDR, skipping", "cidr", entry, "error", err)
			continue
		}
		out = append(out, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return out
}

// forwardedClient reads the client address a proxy reported.
func forwardedClient(h http.Header, trusted []netip.Prefix) (netip.Addr, bool) {
	hops := forwardedHops(h)
	if len(hops) == 0 {
		addr, err := netip.ParseAddr(strings.TrimSpace(h.Get("X-Real-IP")))
		if err != nil {
			return netip.Addr{}, false
		}
		return addr.Unmap(), true
	}

	var last netip.Addr
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		last = addr.Unmap()
		if !isTrusted(last, trusted) {
			return last, true
		}
	}
	// Every parsed hop is a trusted proxy; the outermost one is the best guess.
	return last, last.IsValid()
}

// forwardedHops joins every X-Forwarded-For header into one hop list.
func forwardedHops(h http.Header) []string {
	var hops []string
	for _, v := range h.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(v, ",") {
			if strings.TrimSpace(hop) != "" {
				hops = append(hops, hop)
			}
		}
	}
	return hops
}

// remoteAddr parses a host:port string or plain IP.
func remoteAddr(s string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap(), true
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the address part of r.RemoteAddr.
func ClientIP(r *http.Request) string {
	if addr, ok := remoteAddr(r.RemoteAddr); ok {
		return addr.String()
	}
	return r.RemoteAddr
}
