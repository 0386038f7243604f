package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"newsdesk/internal/config"
	"newsdesk/internal/domain/entity"
	"newsdesk/internal/infra/feed"
	"newsdesk/internal/resilience/fallback"
	"newsdesk/internal/resilience/fanout"
	"newsdesk/internal/utils/text"
)

// feedReport is one row of `diagnose feeds`.
type feedReport struct {
	URL        string                     `json:"url"`
	Collection string                     `json:"collection,omitempty"`
	OK         bool                       `json:"ok"`
	Title      string                     `json:"title,omitempty"`
	Items      int                        `json:"items"`
	UserAgent  string                     `json:"user_agent,omitempty"`
	LatencyMS  int64                      `json:"latency_ms"`
	Attempts   []fallback.Attempt[string] `json:"attempts"`
	Error      string                     `json:"error,omitempty"`
}

func newFeedsCmd() *cobra.Command {
	var (
		sourcesFile string
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "feeds [url...]",
		Short: "Fetch feeds and report which user agent worked",
		Long: `Fetch every feed named on the command line, or every feed in the
source collections when no URL is given, and print one row per feed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			refs, err := feedTargets(e.Sources, sourcesFile, args)
			if err != nil {
				return err
			}
			if len(refs) == 0 {
				return errors.New("no feeds to check: pass URLs or configure a sources file")
			}

			reports := checkFeeds(cmd.Context(), e.Fetcher, refs, e.Parallelism)
			if asJSON {
				err = writeJSON(cmd.OutOrStdout(), reports)
			} else {
				err = writeFeedTable(cmd.OutOrStdout(), reports)
			}
			if err != nil {
				return err
			}
			for _, r := range reports {
				if !r.OK {
					return errChecksFailed
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sourcesFile, "sources", "", "source collections file (default: FEED_SOURCES_FILE)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// feedTargets picks the feeds to check: explicit URLs win over a --sources
// file, which wins over the configured collections.
func feedTargets(configured []entity.SourceCollection, sourcesFile string, urls []string) ([]entity.FeedRef, error) {
	if len(urls) > 0 {
		refs := make([]entity.FeedRef, 0, len(urls))
		for _, u := range urls {
			refs = append(refs, entity.FeedRef{URL: u})
		}
		return refs, nil
	}
	if sourcesFile != "" {
		collections, err := config.LoadSources(sourcesFile)
		if err != nil {
			return nil, err
		}
		return entity.FlattenFeeds(collections), nil
	}
	return entity.FlattenFeeds(configured), nil
}

func checkFeeds(ctx context.Context, fetcher feedFetcher, refs []entity.FeedRef, parallelism int) []feedReport {
	tasks := make([]fanout.Task[*feed.Result], len(refs))
	for i, ref := range refs {
		tasks[i] = func(ctx context.Context) (*feed.Result, error) {
			return fetcher.Fetch(ctx, ref.URL)
		}
	}

	outcomes := fanout.Settle(ctx, parallelism, tasks)
	reports := make([]feedReport, len(refs))
	for i, o := range outcomes {
		r := feedReport{
			URL:        refs[i].URL,
			Collection: refs[i].Collection,
			LatencyMS:  o.Elapsed.Milliseconds(),
		}
		if o.Err != nil {
			r.Error = o.Err.Error()
			var exhausted *fallback.ExhaustedError[string]
			if errors.As(o.Err, &exhausted) {
				r.Attempts = exhausted.Attempts
			}
		} else {
			r.OK = true
			r.Title = o.Value.Title
			r.Items = len(o.Value.Items)
			r.UserAgent = o.Value.UserAgent
			r.Attempts = o.Value.Attempts
		}
		reports[i] = r
	}
	return reports
}

func writeFeedTable(w io.Writer, reports []feedReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tITEMS\tATTEMPTS\tLATENCY\tUSER AGENT\tURL")
	failed := 0
	for _, r := range reports {
		status := "ok"
		if !r.OK {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			status, r.Items, len(r.Attempts),
			(time.Duration(r.LatencyMS) * time.Millisecond).String(),
			text.Truncate(r.UserAgent, 32), r.URL)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, r := range reports {
		if r.Error != "" {
			fmt.Fprintf(w, "\n%s\n  %s\n", r.URL, r.Error)
		}
	}
	_, err := fmt.Fprintf(w, "\n%d/%d feeds working\n", len(reports)-failed, len(reports))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
