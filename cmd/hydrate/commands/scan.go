package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/hydrate/pkg/engine"
)

func newScanCommand() *cobra.Command {
	var (
		exclude string
		suffix  string
	)

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "List placeholders without materializing anything",
		Long: `Perform a single traversal of the tree and print every placeholder
entry found, marking which ones the exclusion pattern would skip. Nothing
is dispatched; this is a dry run of the scanner and filter.`,
		Example: `  # See what a run would dispatch
  hydrate scan ~/odrive -e '/Photos/'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner, err := engine.NewScanner(args[0], suffix)
			if err != nil {
				return err
			}
			filter, err := engine.NewFilter(exclude)
			if err != nil {
				return err
			}

			entries, err := scanner.Scan(cmd.Context(), 1)
			if err != nil {
				return err
			}

			excluded := 0
			for _, entry := range entries {
				if filter.Excluded(entry.Path) {
					excluded++
					fmt.Fprintf(cmd.OutOrStdout(), "excluded  %s\n", entry.Path)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pending   %s\n", entry.Path)
			}

			log.Info().Int("found", len(entries)).Int("excluded", excluded).
				Int("pending", len(entries)-excluded).Msg("scan finished")
			return nil
		},
	}

	cmd.Flags().StringVarP(&exclude, "exclude", "e", "", "regular expression searched in the absolute path of a placeholder")
	cmd.Flags().StringVar(&suffix, "suffix", engine.DefaultSuffix, "placeholder name suffix")

	return cmd
}
