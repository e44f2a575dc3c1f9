package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/osrs-kit/spritefetch/internal/scrape"
	"github.com/osrs-kit/spritefetch/internal/store"
	"github.com/osrs-kit/spritefetch/internal/ui"
	"github.com/osrs-kit/spritefetch/internal/wiki"
)

var (
	imageType    string
	destination  string
	htmlFallback bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <names>",
	Short: "Resolve item names and download their sprites",
	Long: `Resolves a comma-separated list of item names against the wiki, downloads
each item's sprite, and saves it as PNG. The bank variant centers the sprite
in a 36x32 bank-slot frame and erases the stack-count band at the top.

Items that cannot be resolved or downloaded are skipped with a notification;
the rest of the request still completes.`,
	Example: `  # Download full-size sprites
  spritefetch fetch "lobster, swordfish"

  # Bank-slot variants for image searching in the bank interface
  spritefetch fetch "molten glass, bucket of sand" --type=bank

  # Both variants into a specific directory
  spritefetch fetch "rune scimitar" --type=both --output=./sprites/bank`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&imageType, "type", "t", "normal", "Sprite variant to save: normal, bank, or both")
	fetchCmd.Flags().StringVarP(&destination, "output", "o", "", "Directory to save sprites to")
	fetchCmd.Flags().BoolVar(&htmlFallback, "html-fallback", false, "Fall back to the rendered page's og:image when the markup has no file reference")
}

func runFetch(cmd *cobra.Command, args []string) error {
	appCtx := GetApp()
	if appCtx == nil {
		return fmt.Errorf("application not initialized")
	}

	var variant scrape.Variant
	switch strings.ToLower(imageType) {
	case "normal", "sprite":
		variant = scrape.VariantNormal
	case "bank":
		variant = scrape.VariantBank
	case "both", "all":
		variant = scrape.VariantBoth
	default:
		return fmt.Errorf("invalid type: %s (must be normal, bank, or both)", imageType)
	}

	dest := destination
	if dest == "" {
		dest = appCtx.Config.Destination
	}

	var wikiOpts []wiki.Option
	if htmlFallback {
		wikiOpts = append(wikiOpts, wiki.WithHTMLFallback())
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	notify := scrape.Notifier(nil)
	if quiet {
		notify = func(string) {}
	}

	sink := store.NewDiskSink(dest)
	scraper := scrape.New(appCtx.WikiClient(wikiOpts...), appCtx.Fetcher, sink, notify)

	// The bar shares stdout with notifications, so only show it when the
	// notifications are suppressed.
	if quiet {
		var bar *progressbar.ProgressBar
		scraper.SetProgress(func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("fetching sprites"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
				)
			}
			_ = bar.Set(done)
		})
	}

	results := scraper.Run(context.Background(), args[0], variant)

	saved, skipped := 0, 0
	for _, r := range results {
		if r.Skipped() {
			skipped++
		} else {
			saved++
		}
	}

	fmt.Printf("%s %s saved, %s skipped\n",
		ui.Bold("Done:"),
		ui.Success(fmt.Sprintf("%d", saved)),
		ui.Error(fmt.Sprintf("%d", skipped)))

	if skipped > 0 {
		return fmt.Errorf("%d item(s) skipped", skipped)
	}
	return nil
}
