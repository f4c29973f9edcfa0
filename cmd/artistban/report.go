package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/cli/browser"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/artistban/internal/application"
	"github.com/ericfisherdev/artistban/internal/domain/model"
)

// blocker is the part of the control API a report needs.
type blocker interface {
	Block(ctx context.Context, ref model.ArtistRef) (BlockResult, error)
}

// BlockResult is the outcome the server reported for a manual block.
type BlockResult struct {
	ArtistID string
	Outcome  string
}

type apiBlocker struct{ c *apiClient }

func (b apiBlocker) Block(ctx context.Context, ref model.ArtistRef) (BlockResult, error) {
	resp, err := b.c.Block(ctx, ref)
	if err != nil {
		return BlockResult{}, err
	}
	return BlockResult{ArtistID: resp.ArtistID, Outcome: resp.Outcome}, nil
}

// reporter blocks an artist through the server and then performs one
// reporting side action.
type reporter struct {
	blocker     blocker
	openURL     func(string) error
	copyText    func(string) error
	reportRepo  string
	reportEmail string
	out         io.Writer
	logger      *slog.Logger
}

// block runs the manual block. A failure is logged and does not stop the
// side action.
func (r *reporter) block(ctx context.Context, ref model.ArtistRef) {
	res, err := r.blocker.Block(ctx, ref)
	if err != nil {
		r.logger.Warn("manual block failed", "artist_id", ref.ID, "error", err)
		return
	}
	r.logger.Info("manual block", "artist_id", res.ArtistID, "outcome", res.Outcome)
}

func (r *reporter) issue(ctx context.Context, ref model.ArtistRef) error {
	r.block(ctx, ref)
	u := application.IssueURL(r.reportRepo, ref)
	fmt.Fprintln(r.out, u)
	return r.openURL(u)
}

func (r *reporter) mail(ctx context.Context, ref model.ArtistRef) error {
	r.block(ctx, ref)
	u, err := application.MailURL(r.reportEmail, ref)
	if err != nil {
		return err
	}
	return r.openURL(u)
}

func (r *reporter) copy(ctx context.Context, ref model.ArtistRef) error {
	r.block(ctx, ref)
	line, err := application.ClipboardLine(ref)
	if err != nil {
		return err
	}
	if err := r.copyText(line); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	fmt.Fprintf(r.out, "copied %q\n", line)
	return nil
}

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Block an artist now and report it to the list maintainers",
	}

	actions := []struct {
		use   string
		short string
		run   func(*reporter, context.Context, model.ArtistRef) error
	}{
		{"issue", "Open a prefilled GitHub issue for the artist", (*reporter).issue},
		{"mail", "Open a prefilled report email for the artist (address from ARTISTBAN_REPORT_EMAIL)", (*reporter).mail},
		{"copy", "Copy the artist as a list line to the clipboard", (*reporter).copy},
	}

	for _, action := range actions {
		var name string
		sub := &cobra.Command{
			Use:   action.use + " <artist-url>",
			Short: action.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ref, err := artistRef(name, args[0])
				if err != nil {
					return err
				}
				r := &reporter{
					blocker:     apiBlocker{c: newAPIClient(a.cfg.APIAddr, a.cfg.HTTPTimeout)},
					openURL:     browser.OpenURL,
					copyText:    clipboard.WriteAll,
					reportRepo:  a.cfg.ReportRepo,
					reportEmail: a.cfg.ReportEmail,
					out:         cmd.OutOrStdout(),
					logger:      a.logger,
				}
				return action.run(r, cmd.Context(), ref)
			},
		}
		sub.Flags().StringVar(&name, "name", "", "artist display name")
		_ = sub.MarkFlagRequired("name")
		cmd.AddCommand(sub)
	}

	return cmd
}

// artistRef builds a reference from CLI input, failing on URLs that carry no
// artist ID.
func artistRef(name, rawURL string) (model.ArtistRef, error) {
	ref := model.ArtistRef{Name: strings.TrimSpace(name), URL: strings.TrimSpace(rawURL)}
	id, err := ref.ResolveID()
	if err != nil {
		return model.ArtistRef{}, fmt.Errorf("%q: %w", rawURL, err)
	}
	ref.ID = id
	return ref, nil
}
