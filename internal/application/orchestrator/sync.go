package orchestrator

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Options control one sync run.
type Options struct {
	SitesDir string
	DBURL    string
	DryRun   bool
}

// Failure is a site whose scaffold command failed.
type Failure struct {
	Site PlannedSite
	Err  error
}

// Report summarises a sync run.
type Report struct {
	Sites    []PlannedSite
	Created  []PlannedSite
	Failures []Failure
}

// Syncer compares channels to site directories and scaffolds the missing
// storefronts. Progress is written to out in a human readable form.
type Syncer struct {
	source   ChannelSource
	scaffold Scaffolder
	out      io.Writer
	logger   *zap.Logger
}

// NewSyncer creates a Syncer. scaffold may be nil for dry runs.
func NewSyncer(source ChannelSource, scaffold Scaffolder, out io.Writer, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{source: source, scaffold: scaffold, out: out, logger: logger}
}

// Run performs one sync. A failing scaffold is reported and the run moves on
// to the next site; only failures to read channels or the sites directory
// abort it.
func (s *Syncer) Run(ctx context.Context, opts Options) (*Report, error) {
	channels, err := s.source.ActiveChannels(ctx)
	if err != nil {
		return nil, err
	}
	s.printf("Found %d active channel(s) in database.\n\n", len(channels))

	existing, err := ExistingSites(opts.SitesDir)
	if err != nil {
		return nil, err
	}
	s.printf("Existing sites: %s\n\n", existingList(existing))

	report := &Report{Sites: Plan(channels, existing)}
	for _, site := range report.Sites {
		if site.Exists {
			s.printf("  [exists] %s (channel %d)\n", site.Name, site.ChannelID)
			continue
		}
		s.printf("  [new]    %s (channel %d, domain: %s)\n", site.Name, site.ChannelID, site.Domain)
		if opts.DryRun {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.create(ctx, site, opts.DBURL); err != nil {
			s.printf("  Failed to create site %s: %v\n", site.Name, err)
			s.logger.Error("Scaffold failed",
				zap.String("site", site.Name),
				zap.Int64("channel_id", site.ChannelID),
				zap.Error(err))
			report.Failures = append(report.Failures, Failure{Site: site, Err: err})
			continue
		}
		report.Created = append(report.Created, site)
	}

	if opts.DryRun {
		s.printf("\n(dry run - no changes made)\n")
	}
	return report, nil
}

func (s *Syncer) create(ctx context.Context, site PlannedSite, dbURL string) error {
	if s.scaffold == nil {
		return errNoScaffoldCommand
	}
	return s.scaffold.Scaffold(ctx, site, dbURL)
}

func (s *Syncer) printf(format string, args ...any) {
	if s.out != nil {
		fmt.Fprintf(s.out, format, args...)
	}
}

func existingList(existing map[string]bool) string {
	if len(existing) == 0 {
		return "(none)"
	}
	names := make([]string, 0, len(existing))
	for name := range existing {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
