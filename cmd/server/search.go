package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword or barcode>",
	Short: "Run one marketplace search and print the result set as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		keyword := strings.Join(args, " ")
		if err := a.search.Preprocessor().Validate(keyword); err != nil {
			return err
		}

		result := a.search.Search(cmd.Context(), keyword)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
