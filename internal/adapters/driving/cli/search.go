package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-chat/internal/core/domain"
)

var (
	searchRoom      string
	searchLimit     int
	searchBefore    int
	searchAfter     int
	searchProfile   bool
	searchRank      bool
	searchNextBatch string
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search room messages",
	Long: `Searches the messages of all joined rooms, or of one room with --room.

Every word of the term must appear in a message. The last word also matches
longer words, so "lorem ips" finds "lorem ipsum". Results are newest first
unless --rank orders them by the number of matched words.

When more results exist a next-batch token is printed; pass it back with
--next-batch and the same term to fetch the following page.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchRoom, "room", "", "restrict the search to one room")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = configured default)")
	searchCmd.Flags().IntVar(&searchBefore, "before", 0, "messages of context before each result")
	searchCmd.Flags().IntVar(&searchAfter, "after", 0, "messages of context after each result")
	searchCmd.Flags().BoolVar(&searchProfile, "profile", false, "include the sender profile")
	searchCmd.Flags().BoolVar(&searchRank, "rank", false, "order by relevance instead of recency")
	searchCmd.Flags().StringVar(&searchNextBatch, "next-batch", "", "resume from a previous page")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	query := domain.SearchQuery{
		Term:           args[0],
		RoomID:         searchRoom,
		Limit:          searchLimit,
		BeforeLimit:    searchBefore,
		AfterLimit:     searchAfter,
		IncludeProfile: searchProfile,
		OrderByRecent:  !searchRank,
		NextBatch:      searchNextBatch,
	}

	result, err := searchService.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, result)
	}

	outputSearchTable(cmd, args[0], result)
	return nil
}

type jsonSearchResult struct {
	Count      int           `json:"count"`
	Highlights []string      `json:"highlights"`
	NextBatch  string        `json:"next_batch,omitempty"`
	Results    []jsonMessage `json:"results"`
}

type jsonMessage struct {
	EventID     string        `json:"event_id"`
	RoomID      string        `json:"room_id"`
	Sender      string        `json:"sender"`
	DisplayName string        `json:"display_name,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
	Body        string        `json:"body"`
	Rank        int           `json:"rank"`
	Before      []jsonMessage `json:"before,omitempty"`
	After       []jsonMessage `json:"after,omitempty"`
}

func toJSONMessage(e domain.Event) jsonMessage {
	return jsonMessage{
		EventID:   e.ID,
		RoomID:    e.RoomID,
		Sender:    e.Sender,
		Timestamp: e.Timestamp.UTC(),
		Body:      e.Body,
	}
}

func outputSearchJSON(cmd *cobra.Command, result *domain.SearchResult) error {
	out := jsonSearchResult{
		Count:      result.Count,
		Highlights: result.Highlights,
		NextBatch:  result.NextBatch,
		Results:    make([]jsonMessage, 0, len(result.Items)),
	}
	if out.Highlights == nil {
		out.Highlights = []string{}
	}

	for _, item := range result.Items {
		msg := toJSONMessage(item.Event)
		msg.Rank = item.Rank
		if item.Profile != nil {
			msg.DisplayName = item.Profile.DisplayName
		}
		if item.Context != nil {
			for _, e := range item.Context.Before {
				msg.Before = append(msg.Before, toJSONMessage(e))
			}
			for _, e := range item.Context.After {
				msg.After = append(msg.After, toJSONMessage(e))
			}
		}
		out.Results = append(out.Results, msg)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, term string, result *domain.SearchResult) {
	p := newPrinter(cmd.OutOrStdout())

	if len(result.Items) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println(p.Title(fmt.Sprintf("Found %d matches (showing %d)", result.Count, len(result.Items))))
	cmd.Println()

	for i, item := range result.Items {
		sender := item.Event.Sender
		if item.Profile != nil && item.Profile.DisplayName != "" {
			sender = fmt.Sprintf("%s (%s)", item.Profile.DisplayName, item.Event.Sender)
		}

		cmd.Printf("  [%d] %s  %s  %s\n", i+1,
			p.Muted(formatTimestamp(item.Event.Timestamp)),
			p.Sender(sender),
			p.Muted(item.Event.RoomID))

		if item.Context != nil {
			for _, e := range item.Context.Before {
				cmd.Printf("      %s\n", p.Muted(contextLine(e)))
			}
		}
		cmd.Printf("      %s\n", p.Highlight(item.Event.Body, result.Highlights))
		if item.Context != nil {
			for _, e := range item.Context.After {
				cmd.Printf("      %s\n", p.Muted(contextLine(e)))
			}
		}
		cmd.Println()
	}

	if result.NextBatch != "" {
		cmd.Printf("More results: sercha-chat search %q --next-batch %s\n", term, result.NextBatch)
	}
}

func contextLine(e domain.Event) string {
	switch {
	case e.Redacted:
		return fmt.Sprintf("| %s: (redacted)", e.Sender)
	case e.Pending():
		return fmt.Sprintf("| %s: (unable to decrypt)", e.Sender)
	case e.Body == "":
		return fmt.Sprintf("| %s: [%s]", e.Sender, e.Type)
	default:
		return fmt.Sprintf("| %s: %s", e.Sender, e.Body)
	}
}

func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
