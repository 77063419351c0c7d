package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	channels := []ChannelSite{
		{ChannelID: 1, ChannelName: "Retail", SiteURL: "https://retail.example.com"},
		{ChannelID: 1, ChannelName: "Retail", SiteURL: "https://other.example.com"},
		{ChannelID: 2, ChannelName: "Trade Counter"},
		{ChannelID: 3, ChannelName: "???"},
	}

	sites := Plan(channels, map[string]bool{"retail": true})
	require.Len(t, sites, 2)

	assert.Equal(t, PlannedSite{
		ChannelID: 1, ChannelName: "Retail", Name: "retail",
		Domain: "retail.example.com", Exists: true,
	}, sites[0])
	assert.Equal(t, PlannedSite{
		ChannelID: 2, ChannelName: "Trade Counter", Name: "trade-counter",
		Domain: "trade-counter.localhost",
	}, sites[1])
}

func TestExistingSites(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "retail"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "trade"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644))

	got, err := ExistingSites(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"retail": true, "trade": true}, got)

	got, err = ExistingSites(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
