package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iksnae/storyline/internal"
	"github.com/iksnae/storyline/internal/export"
	"github.com/iksnae/storyline/internal/store"
	"github.com/spf13/cobra"
)

var (
	format        string
	outputDir     string
	exportFeature string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stories to files",
	Long: `Export stored stories to various formats (md, json, yaml, jsonl).

Markdown, JSON and YAML write one file per story under <out>/<feature>/.
JSONL writes every story as one line of <out>/stories.jsonl.
Use --feature to export a single feature.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		st, _, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		stories, err := st.ListStories(exportFeature)
		if err != nil {
			return fmt.Errorf("failed to list stories: %w", err)
		}
		if len(stories) == 0 {
			internal.PrintWarning("No stories to export")
			return nil
		}

		// Ensure output directory exists
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		var written int
		err = internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d stor%s to %s", len(stories), plural(len(stories), "y", "ies"), outputDir), func() error {
			var err error
			written, err = exportStories(exporter, stories, outputDir)
			return err
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d stor%s exported to %s", written, plural(written, "y", "ies"), outputDir))
		return nil
	},
}

// exportStories writes stories below dir and returns how many were written.
// A story that fails to export is logged and skipped.
func exportStories(exporter export.Exporter, stories []*store.Story, dir string) (int, error) {
	if !export.OneFilePerStory(exporter) {
		path := filepath.Join(dir, "stories."+exporter.Extension())
		written := 0
		err := writeExport(path, func(w io.Writer) error {
			for _, story := range stories {
				if err := exporter.Export(story, w); err != nil {
					return err
				}
				written++
			}
			return nil
		})
		if err != nil {
			return written, &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
		}
		return written, nil
	}

	written := 0
	for _, story := range stories {
		if story == nil {
			internal.LogWarn("Skipping nil story")
			continue
		}
		featureDir := filepath.Join(dir, store.FeatureKey(story.Feature))
		if err := os.MkdirAll(featureDir, 0755); err != nil {
			return written, fmt.Errorf("failed to create output directory: %w", err)
		}
		path := filepath.Join(featureDir, fmt.Sprintf("%s.%s", story.ID, exporter.Extension()))
		err := writeExport(path, func(w io.Writer) error {
			return exporter.Export(story, w)
		})
		if err != nil {
			internal.LogError("Failed to export story %s: %v", story.ID, err)
			continue
		}
		written++
	}
	return written, nil
}

func writeExport(path string, fn func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	if err := fn(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", path, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "md", "Export format (md, json, yaml, jsonl)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&exportFeature, "feature", "", "Only export stories of this feature")
}
