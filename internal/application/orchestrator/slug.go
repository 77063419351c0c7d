// Package orchestrator keeps the set of storefront sites in step with the
// active channels in the commerce database. It plans which channels still
// need a storefront and hands each new one to an external scaffold command.
package orchestrator

import (
	"net/url"
	"strings"
)

// SiteDomain returns the hostname of siteURL, or "{name}.localhost" when the
// channel has no usable primary site URL. URLs without a scheme are read as
// https.
func SiteDomain(siteURL, name string) string {
	if host := hostname(strings.TrimSpace(siteURL)); host != "" {
		return host
	}
	return name + ".localhost"
}

func hostname(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err == nil && u.Hostname() != "" {
		return strings.ToLower(u.Hostname())
	}
	if !strings.Contains(raw, "://") {
		if u, err := url.Parse("https://" + raw); err == nil {
			return strings.ToLower(u.Hostname())
		}
	}
	return ""
}
