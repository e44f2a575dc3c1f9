package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osrs-kit/spritefetch/internal/render"
	"github.com/osrs-kit/spritefetch/internal/titles"
	"github.com/osrs-kit/spritefetch/internal/wiki"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show an item's wiki page as Markdown",
	Example: `  spritefetch info lobster
  spritefetch info "rune scimitar"`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	appCtx := GetApp()
	if appCtx == nil {
		return fmt.Errorf("application not initialized")
	}

	tokens := titles.FormatArgs(args[0])
	if len(tokens) != 1 {
		return fmt.Errorf("info takes a single item name")
	}
	title := titles.CapitalizeEachWord(tokens[0])

	client := appCtx.WikiClient()
	pageHTML, err := client.PageHTML(context.Background(), title)
	if err != nil {
		if errors.Is(err, wiki.ErrPageNotFound) {
			return fmt.Errorf("no wiki page for %s", title)
		}
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	markdown, err := render.PageMarkdown(pageHTML, client.BaseURL())
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	fmt.Println(markdown)
	return nil
}
