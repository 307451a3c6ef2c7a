package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/storyline/internal/store"
	"github.com/spf13/cobra"
)

var (
	listFeature string
	listStatus  string
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	featureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored stories",
	Long: `List the stories in the store, grouped by feature.

Use --feature to list a single feature (or 'backlog') and --status to filter
by status (draft, ready, in-progress, done).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		stories, err := st.ListStories(listFeature)
		if err != nil {
			return fmt.Errorf("failed to list stories: %w", err)
		}
		stories = filterByStatus(stories, listStatus)

		displayStories(cmd.OutOrStdout(), stories, time.Now())
		return nil
	},
}

func filterByStatus(stories []*store.Story, status string) []*store.Story {
	status = strings.TrimSpace(status)
	if status == "" {
		return stories
	}
	filtered := make([]*store.Story, 0, len(stories))
	for _, s := range stories {
		if strings.EqualFold(s.Status, status) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func displayStories(out io.Writer, stories []*store.Story, now time.Time) {
	if len(stories) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📋 No stories found"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d stor%s", len(stories), plural(len(stories), "y", "ies"))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Feature")+"\t"+titleStyle.Render("Status")+"\t"+titleStyle.Render("Updated")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, s := range stories {
		title := s.Title
		if title == "" {
			title = "Untitled"
		}
		if len(title) > 50 {
			title = title[:47] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(s.ID),
			title,
			featureStyle.Render(store.FeatureKey(s.Feature)),
			countStyle.Render(s.Status),
			dateStyle.Render(formatDate(s.UpdatedAt, now)),
		)
	}

	_ = w.Flush()
	fmt.Fprintln(out)
	first := stories[0]
	fmt.Fprintln(out, idStyle.Render("💡 Tip: view a story with ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(fmt.Sprintf("storyline show %s %s", store.FeatureKey(first.Feature), first.ID)))
}

// formatDate renders t relative to now, coarser the older it is.
func formatDate(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	t = t.Local()
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listFeature, "feature", "", "Only list stories of this feature ('backlog' for unfiled stories)")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only list stories with this status")
}
