package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type countryContextKey struct{}

// CountryKey is the context key carrying the request's resolved country.
var CountryKey = countryContextKey{}

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// Geo annotates each request context with the caller's country code when a
// lookup is available. Lookup failures are ignored; geo data is advisory.
func Geo(lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if lookup == nil {
				next.ServeHTTP(w, r)
				return
			}
			ip := ClientIP(r)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}
			country, err := lookup(ip)
			if err != nil || country == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), CountryKey, strings.ToUpper(country))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CountryFromContext returns the resolved country code, or "".
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}
	return ""
}
