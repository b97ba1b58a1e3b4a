package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gabrielfornes/memex/internal/app"
	"github.com/gabrielfornes/memex/internal/logging"
	"github.com/gabrielfornes/memex/internal/query"
)

type entriesOptions struct {
	tag    string
	from   string
	to     string
	dates  string
	sort   string
	search string
	dryRun bool
}

func newEntriesCmd(root *rootOptions) *cobra.Command {
	o := &entriesOptions{}

	cmd := &cobra.Command{
		Use:     "entries",
		Aliases: []string{"ls"},
		Short:   "List cached entries matching a filter",
		Example: heredoc.Doc(`
			memex entries --tag golang
			memex entries --range 2021-01-01..2021-01-31 --sort url
			memex entries --from 2021-03-01 --tag reading
			memex entries --search "rust async" --dry-run
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := o.filter(time.Now())
			if err != nil {
				return err
			}
			client, err := root.client()
			if err != nil {
				return err
			}

			opts := root.cfg.AppOptions()
			if o.dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), client.URL(query.BuildEntriesQuery(f, opts.Limit)))
				return nil
			}

			s, err := fetchAll(cmd.Context(), client, app.NewWithFilter(opts, f))
			if err != nil {
				return err
			}
			if !s.EntriesLoaded {
				if s.LastError == "" {
					return errors.New("entries were not loaded")
				}
				return errors.New(s.LastError)
			}
			if s.LastError != "" {
				logging.Log.WithField("error", s.LastError).Warn("tag listing failed")
			}
			printEntries(cmd.OutOrStdout(), s.Entries)
			return nil
		},
	}

	cmd.Flags().StringVarP(&o.tag, "tag", "t", "", "only entries carrying this tag")
	cmd.Flags().StringVar(&o.from, "from", "", "start date, any common layout")
	cmd.Flags().StringVar(&o.to, "to", "", "end date, any common layout (requires --from)")
	cmd.Flags().StringVarP(&o.dates, "range", "r", "", "date range as start..end")
	cmd.Flags().StringVarP(&o.sort, "sort", "o", "time", "sort by time or url")
	cmd.Flags().StringVarP(&o.search, "search", "s", "", "full-text search; ignores tag, dates and sort")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "print the request URL without fetching")
	return cmd
}

// filter turns the flags into a query filter. now bounds an open --from.
func (o *entriesOptions) filter(now time.Time) (query.Filter, error) {
	sortKey, err := query.ParseSortKey(o.sort)
	if err != nil {
		return query.Filter{}, err
	}
	f := query.Filter{Sort: sortKey}

	if text := strings.TrimSpace(o.search); text != "" {
		if o.tag != "" || o.dates != "" || o.from != "" || o.to != "" {
			return query.Filter{}, errors.New("--search cannot be combined with --tag or dates")
		}
		f.Mode = query.SearchMode{Text: text}
		f.Buffer = o.search
		return f, nil
	}

	r, err := o.dateRange(now)
	if err != nil {
		return query.Filter{}, err
	}
	f.Mode = query.FilterMode{Tag: o.tag, Range: r}
	return f, nil
}

func (o *entriesOptions) dateRange(now time.Time) (*query.DateRange, error) {
	if o.dates != "" {
		if o.from != "" || o.to != "" {
			return nil, errors.New("--range cannot be combined with --from or --to")
		}
		return query.ParseRange(o.dates)
	}
	if o.from == "" {
		if o.to != "" {
			return nil, errors.New("--to requires --from")
		}
		return nil, nil
	}

	start, err := query.ParseDate(o.from)
	if err != nil {
		return nil, fmt.Errorf("invalid --from: %w", err)
	}
	end := now
	if o.to != "" {
		if end, err = query.ParseDate(o.to); err != nil {
			return nil, fmt.Errorf("invalid --to: %w", err)
		}
	}
	return query.NewRange(start, end), nil
}

// fetchAll runs a controller over s until its initial refresh settles.
func fetchAll(ctx context.Context, f app.Fetcher, s app.State) (app.State, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := app.NewController(s, f, app.WithLogger(logrus.NewEntry(logging.Log)))
	done := make(chan struct{})
	go func() {
		_ = c.Run(ctx)
		close(done)
	}()

	s, err := c.WaitIdle(ctx)
	cancel()
	<-done
	return s, err
}
