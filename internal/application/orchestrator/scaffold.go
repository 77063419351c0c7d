package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// Scaffolder creates the storefront for a planned site.
type Scaffolder interface {
	Scaffold(ctx context.Context, site PlannedSite, dbURL string) error
}

var errNoScaffoldCommand = errors.New("scaffold command is not configured")

// CommandScaffolder runs an external command per site:
//
//	<command...> <name> --channel-id=<id> --domain=<domain> --db-url=<url>
//
// Command is split on whitespace; arguments are passed without a shell.
type CommandScaffolder struct {
	Command string
	Dir     string
	Stdout  io.Writer
	Stderr  io.Writer
}

// Args builds the argument list for site.
func (c *CommandScaffolder) Args(site PlannedSite, dbURL string) ([]string, error) {
	fields := strings.Fields(c.Command)
	if len(fields) == 0 {
		return nil, errNoScaffoldCommand
	}
	return append(fields,
		site.Name,
		"--channel-id="+strconv.FormatInt(site.ChannelID, 10),
		"--domain="+site.Domain,
		"--db-url="+dbURL,
	), nil
}

// Scaffold runs the command and waits for it.
func (c *CommandScaffolder) Scaffold(ctx context.Context, site PlannedSite, dbURL string) error {
	args, err := c.Args(site, dbURL)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = c.Dir
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}
