package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/gabrielfornes/memex/internal/query"
)

func newTagsCmd(root *rootOptions) *cobra.Command {
	var minFreq int

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags used at least --min times",
		Example: heredoc.Doc(`
			memex tags
			memex tags --min 1
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("min") {
				minFreq = root.cfg.TagMin
			}
			client, err := root.client()
			if err != nil {
				return err
			}
			tags, err := client.ListTags(cmd.Context(), query.BuildTagsQuery(minFreq))
			if err != nil {
				return err
			}
			printTags(cmd.OutOrStdout(), tags)
			return nil
		},
	}

	cmd.Flags().IntVar(&minFreq, "min", 0, "minimum tag frequency (default from tag_min)")
	return cmd
}
