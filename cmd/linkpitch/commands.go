package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/linkpitch/internal/bootstrap"
	"github.com/PabloGalante/linkpitch/internal/config"
	"github.com/PabloGalante/linkpitch/internal/domain"
	"github.com/PabloGalante/linkpitch/internal/observability"
)

// scrapeCmd fetches a profile or company page
var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Scrape a LinkedIn profile or company",
	Args:  cobra.ExactArgs(1),
	RunE:  runScrape,
}

// generateCmd drafts a message for a contact
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an outreach message for a contact",
	Long: `Generate a connection request (no history) or a follow-up (with history)
for a stored contact. Flags override the stored profiles.

With --dry-run the rendered prompt is printed and the model is not called.`,
	RunE: runGenerate,
}

var (
	scrapeCompany bool
	scrapeSave    bool
	scrapeOwner   string

	genOwner   string
	genContact string
	genDryRun  bool
	genRaw     domain.RawContext
)

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeCompany, "company", false, "scrape a company page instead of a profile")
	scrapeCmd.Flags().BoolVar(&scrapeSave, "save", false, "store the scraped profile as a contact")
	scrapeCmd.Flags().StringVar(&scrapeOwner, "owner", "local", "owner id to save the contact under")
	scrapeCmd.MarkFlagsMutuallyExclusive("company", "save")

	f := generateCmd.Flags()
	f.StringVar(&genOwner, "owner", "local", "owner id the contact belongs to")
	f.StringVar(&genContact, "contact", "", "contact id (LinkedIn identifier)")
	f.BoolVar(&genDryRun, "dry-run", false, "print the prompt without calling the model")
	f.StringVar(&genRaw.ContactName, "name", "", "contact name")
	f.StringVar(&genRaw.ContactHeadline, "headline", "", "contact headline")
	f.StringVar(&genRaw.ContactCompany, "company", "", "contact company")
	f.StringVar(&genRaw.ContactAbout, "about", "", "contact about section")
	f.StringVar(&genRaw.UserName, "my-name", "", "your name")
	f.StringVar(&genRaw.UserHeadline, "my-headline", "", "your headline")
	f.StringVar(&genRaw.UserAbout, "my-about", "", "your about section")
	f.StringVar(&genRaw.SharedBackground, "shared", "", "shared background with the contact")
	f.StringVar(&genRaw.Tone, "tone", "", "tone (default professional)")
	f.StringVar(&genRaw.RequestType, "request-type", "", "request type (default connection)")
	_ = generateCmd.MarkFlagRequired("contact")
}

func newApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	observability.ConfigureTo(os.Stderr, cfg.Logging.Level)
	return bootstrap.New(ctx, cfg)
}

func runScrape(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	if scrapeCompany {
		return printJSON(cmd.OutOrStdout(), app.Scraper.ScrapeCompany(cmd.Context(), args[0]))
	}

	res := app.Scraper.ScrapeProfile(cmd.Context(), args[0])
	if scrapeSave {
		if _, err := app.Contacts.SaveScrape(cmd.Context(), domain.OwnerID(scrapeOwner), args[0], res); err != nil {
			return err
		}
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	contact := domain.ContactID(genContact)
	owner := domain.OwnerID(genOwner)

	if genDryRun {
		p, mode, err := app.Generation.Preview(ctx, contact, owner, genRaw)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "mode: %s\n\n--- system ---\n%s\n\n--- user ---\n%s\n", mode, p.System, p.User)
		return nil
	}

	res, err := app.Generation.Generate(ctx, contact, owner, genRaw)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
