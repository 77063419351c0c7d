package orchestrator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticSource []ChannelSite

func (s staticSource) ActiveChannels(context.Context) ([]ChannelSite, error) { return s, nil }

type mockScaffolder struct {
	mock.Mock
}

func (m *mockScaffolder) Scaffold(ctx context.Context, site PlannedSite, dbURL string) error {
	return m.Called(ctx, site, dbURL).Error(0)
}

func sitesDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		require.NoError(t, os.Mkdir(filepath.Join(dir, n), 0o755))
	}
	return dir
}

var channels = staticSource{
	{ChannelID: 1, ChannelName: "Retail", SiteURL: "https://retail.example.com"},
	{ChannelID: 2, ChannelName: "Trade Counter"},
	{ChannelID: 3, ChannelName: "Export"},
}

func TestSyncer_DryRun(t *testing.T) {
	scaffold := &mockScaffolder{}
	var out bytes.Buffer

	report, err := NewSyncer(channels, scaffold, &out, zap.NewNop()).Run(context.Background(), Options{
		SitesDir: sitesDir(t, "retail"),
		DryRun:   true,
	})
	require.NoError(t, err)
	assert.Len(t, report.Sites, 3)
	assert.Empty(t, report.Created)

	text := out.String()
	assert.Contains(t, text, "Found 3 active channel(s) in database.")
	assert.Contains(t, text, "Existing sites: retail")
	assert.Contains(t, text, "  [exists] retail (channel 1)")
	assert.Contains(t, text, "  [new]    trade-counter (channel 2, domain: trade-counter.localhost)")
	assert.Contains(t, text, "(dry run - no changes made)")
	scaffold.AssertNotCalled(t, "Scaffold", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncer_FailuresDoNotStopTheRun(t *testing.T) {
	const dbURL = "postgres://commerce@db/commerce"
	scaffold := &mockScaffolder{}
	scaffold.On("Scaffold", mock.Anything, mock.MatchedBy(func(s PlannedSite) bool { return s.Name == "trade-counter" }), dbURL).
		Return(assert.AnError)
	scaffold.On("Scaffold", mock.Anything, mock.MatchedBy(func(s PlannedSite) bool { return s.Name == "export" }), dbURL).
		Return(nil)
	var out bytes.Buffer

	report, err := NewSyncer(channels, scaffold, &out, nil).Run(context.Background(), Options{
		SitesDir: sitesDir(t, "retail"),
		DBURL:    dbURL,
	})
	require.NoError(t, err)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "trade-counter", report.Failures[0].Site.Name)
	require.Len(t, report.Created, 1)
	assert.Equal(t, "export", report.Created[0].Name)
	assert.Contains(t, out.String(), "Failed to create site trade-counter")
	assert.NotContains(t, out.String(), "dry run")
	scaffold.AssertExpectations(t)
}

func TestSyncer_NoSites(t *testing.T) {
	var out bytes.Buffer
	_, err := NewSyncer(staticSource{}, nil, &out, nil).Run(context.Background(), Options{
		SitesDir: filepath.Join(t.TempDir(), "none"),
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Existing sites: (none)")
}

func TestCommandScaffolder_Args(t *testing.T) {
	c := &CommandScaffolder{Command: "node orchestrator/new-site.mjs"}
	args, err := c.Args(PlannedSite{ChannelID: 7, Name: "retail", Domain: "retail.localhost"}, "postgres://x")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"node", "orchestrator/new-site.mjs", "retail",
		"--channel-id=7", "--domain=retail.localhost", "--db-url=postgres://x",
	}, args)

	_, err = (&CommandScaffolder{}).Args(PlannedSite{}, "")
	assert.ErrorIs(t, err, errNoScaffoldCommand)
}
