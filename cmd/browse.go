package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the news browser without the home screen",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd.Context(), appOpts{browse: true})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Open the browser on the Custom tab and search for a topic",
	Long: `Validate the query as a technical topic, then load news about it.

Queries longer than 50 characters are rejected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := joinQuery(args)
		if err != nil {
			return err
		}
		return runApp(cmd.Context(), appOpts{browse: true, query: query})
	},
}

func init() {
	browseCmd.Flags().StringVar(&flagTab, "tab", "", "tab to open: tech, nvidia or custom")
}

// joinQuery turns command arguments into a custom query.
func joinQuery(args []string) (string, error) {
	query := strings.Join(strings.Fields(strings.Join(args, " ")), " ")
	if query == "" {
		return "", errEmptyQuery
	}
	if n := len([]rune(query)); n > queryLimit {
		return "", fmt.Errorf("query is %d characters, the limit is %d", n, queryLimit)
	}
	return query, nil
}
