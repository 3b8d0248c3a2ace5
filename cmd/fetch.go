package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/techradar/internal/news"
	"github.com/matheuskafuri/techradar/internal/store"
	"github.com/matheuskafuri/techradar/internal/topic"
)

var (
	flagTopic string
	flagQuery string
	flagPages int
	flagJSON  bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch news without the browser and print it",
	Long: `Load one or more pages of news for a topic and print them.

The Custom topic needs --query and always returns a single page.`,
	Example: `  techradar fetch --topic nvidia --pages 2
  techradar fetch --topic custom --query "WebGPU compute" --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := topic.Parse(flagTopic)
		if err != nil {
			return err
		}
		if flagPages < 1 {
			return fmt.Errorf("--pages must be at least 1")
		}
		query := ""
		if k.IsCustom() {
			if query, err = joinQuery([]string{flagQuery}); err != nil {
				return err
			}
		}

		svc, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.close()

		progress := cmd.ErrOrStderr()
		if flagJSON {
			progress = io.Discard
		}
		st, err := fetchPages(cmd.Context(), svc.newStore(k), query, flagPages, progress)
		if perr := printArticles(cmd.OutOrStdout(), st.Articles, flagJSON); perr != nil {
			return perr
		}
		return err
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <query>",
	Short: "Check whether a query is a technical topic techradar can search",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.close()

		v := svc.validator.Validate(cmd.Context(), strings.Join(args, " "))
		if !v.Valid {
			return fmt.Errorf("query rejected: %s", v.Reason)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %s\n", v.Reason)
		return nil
	},
}

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the news topics and their focus areas",
	Run: func(cmd *cobra.Command, args []string) {
		printTopics(cmd.OutOrStdout())
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&flagTopic, "topic", "t", "tech", "topic to fetch: tech, nvidia or custom")
	fetchCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "search query for the custom topic")
	fetchCmd.Flags().IntVarP(&flagPages, "pages", "p", 1, "number of pages to load")
	fetchCmd.Flags().BoolVar(&flagJSON, "json", false, "print articles as JSON")
}

// fetchPages drives st the way the browser does: a first page for the
// active tab, then further pages while more are available. Progress lines
// go to progress.
func fetchPages(ctx context.Context, st *store.Store, query string, pages int, progress io.Writer) (store.State, error) {
	seen := 0
	unsubscribe := st.Subscribe(func(s store.State) {
		if n := len(s.Articles); n > seen {
			fmt.Fprintf(progress, "  %d articles\n", n)
			seen = n
		}
	})
	defer unsubscribe()

	if st.State().ActiveTab.IsCustom() {
		st.SetCustomQuery(query)
		st.ValidateAndFetchCustomNews(ctx)
		s := st.State()
		if s.CustomQueryErr != "" {
			return s, fmt.Errorf("query rejected: %s", s.CustomQueryErr)
		}
		return s, stateErr(s)
	}

	st.FetchNews(ctx, true)
	for page := 1; page < pages; page++ {
		s := st.State()
		if s.Err != "" || !s.HasMore {
			break
		}
		st.FetchNews(ctx, false)
	}
	s := st.State()
	return s, stateErr(s)
}

func stateErr(s store.State) error {
	if s.Err == "" {
		return nil
	}
	return errors.New(s.Err)
}

func printArticles(w io.Writer, articles []news.Article, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if articles == nil {
			articles = []news.Article{}
		}
		return enc.Encode(articles)
	}

	if len(articles) == 0 {
		_, err := fmt.Fprintln(w, "No News Found")
		return err
	}
	for i, a := range articles {
		fmt.Fprintf(w, "%d. %s\n", i+1, a.Title)
		if a.SourceTitle != "" {
			fmt.Fprintf(w, "   %s\n", a.SourceTitle)
		}
		if a.Summary != "" {
			fmt.Fprintf(w, "   %s\n", a.Summary)
		}
		if a.SourceURL != "" {
			fmt.Fprintf(w, "   %s\n", a.SourceURL)
		}
		if i < len(articles)-1 {
			fmt.Fprintln(w)
		}
	}
	return nil
}

func printTopics(w io.Writer) {
	for i, k := range topic.All() {
		fmt.Fprintf(w, "%d  %-7s %s\n", i+1, strings.ToLower(string(k)), k.Label())
		domains := k.Domains()
		if len(domains) == 0 {
			fmt.Fprintln(w, "   any technical topic you search for")
			continue
		}
		for _, d := range domains {
			fmt.Fprintf(w, "   - %s\n", d)
		}
	}
}
