package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/gabrielfornes/memex/internal/catalog"
	"github.com/gabrielfornes/memex/internal/query"
)

func printEntries(w io.Writer, entries []catalog.CacheEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, color.New(color.Faint).Sprint("No entries"))
		return
	}

	bold := color.New(color.Bold)
	tagColor := color.New(color.FgYellow)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("DATE"), bold.Sprint("TITLE"), bold.Sprint("TAGS"))
	for _, e := range entries {
		date := ""
		if !e.Timestamp.IsZero() {
			date = e.Timestamp.Format(query.DateLayout)
		}
		tbl.AddRow(e.ID, date, e.Label(), tagColor.Sprint(strings.Join(e.Tags, ", ")))
	}
	tbl.RightAlign(0)

	fmt.Fprintln(w, tbl)
}

func printTags(w io.Writer, tags []string) {
	if len(tags) == 0 {
		fmt.Fprintln(w, color.New(color.Faint).Sprint("No tags"))
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(color.New(color.Bold).Sprint("TAG"))
	for _, t := range tags {
		tbl.AddRow(t)
	}
	fmt.Fprintln(w, tbl)
}
