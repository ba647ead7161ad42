package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"coursetrack/backend/catalog"

	"github.com/spf13/cobra"
)

var (
	catalogFile string
	catalogJSON bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Validate and print the course catalog",
	Long: `Validate and print the course catalog.

Reads --file, then CATALOG_PATH, and falls back to the built-in catalog.
Exits non-zero when the catalog has missing titles or duplicate ids.`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogFile, "file", "f", "", "Catalog YAML file")
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "Print the catalog as JSON")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	path := catalogFile
	if path == "" {
		path = os.Getenv("CATALOG_PATH")
	}

	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if catalogJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cat.Courses())
	}

	for _, course := range cat.Courses() {
		fmt.Fprintf(out, "%s\t%s\t%d lessons\n", course.ID, course.Title, len(course.Lessons))
		for _, lesson := range course.Lessons {
			fmt.Fprintf(out, "  %s\t%s\n", lesson.ID, lesson.Title)
		}
	}
	return nil
}
