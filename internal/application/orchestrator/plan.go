package orchestrator

import "github.com/cmlibra71/keenan-group-channels/internal/domain/shared"

// PlannedSite is the storefront a channel maps to.
type PlannedSite struct {
	ChannelID   int64
	ChannelName string
	Name        string
	Domain      string
	Exists      bool
}

// Plan maps channels to storefront sites in channel order. Only the first
// row of a channel counts, and a channel whose name slugifies to nothing is
// skipped.
func Plan(channels []ChannelSite, existing map[string]bool) []PlannedSite {
	seen := make(map[int64]bool, len(channels))
	out := make([]PlannedSite, 0, len(channels))
	for _, ch := range channels {
		if seen[ch.ChannelID] {
			continue
		}
		seen[ch.ChannelID] = true

		name := shared.Slugify(ch.ChannelName)
		if name == "" {
			continue
		}
		out = append(out, PlannedSite{
			ChannelID:   ch.ChannelID,
			ChannelName: ch.ChannelName,
			Name:        name,
			Domain:      SiteDomain(ch.SiteURL, name),
			Exists:      existing[name],
		})
	}
	return out
}
