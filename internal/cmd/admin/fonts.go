package admin

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/louisbranch/typeshelf/internal/fonts/query"
)

const defaultUploader = "typeshelf-cli"

func (c *cli) fontsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "Maintain the font catalog",
	}
	cmd.AddCommand(c.fontsImportCmd(), c.fontsListCmd(), c.fontsSeedCmd())
	return cmd
}

func (c *cli) fontsImportCmd() *cobra.Command {
	var uploadedBy string
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Add TrueType or OpenType files to the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openCatalog(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			added := 0
			for _, path := range args {
				font, ok, err := store.importFile(ctx, path, uploadedBy)
				if err != nil {
					return store.finish(ctx, added, err)
				}
				if !ok {
					fmt.Fprintf(out, "skipped %s: %s already in catalog\n", path, font.DisplayName())
					continue
				}
				added++
				fmt.Fprintf(out, "added %s %s\n", font.ID, font.DisplayName())
			}
			return store.finish(ctx, added, nil)
		},
	}
	cmd.Flags().StringVar(&uploadedBy, "uploaded-by", defaultUploader, "uploader recorded on imported fonts")
	return cmd
}

func (c *cli) fontsListCmd() *cobra.Command {
	var (
		filter  string
		orderBy string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print catalog fonts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := query.Parse(filter, orderBy)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := c.openCatalog(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.catalog.ListFonts(ctx, q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFAMILY\tSTYLE\tWEIGHT\tFORMAT\tUPLOADED BY")
			for _, font := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					font.ID, font.Family, font.Style, font.Weight, strings.ToUpper(string(font.Format)), font.UploadedBy)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", `AIP-160 filter, e.g. family = "Inter"`)
	cmd.Flags().StringVar(&orderBy, "order-by", "", "AIP-132 ordering, e.g. weight desc")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *cli) fontsSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <manifest.yaml>",
		Short: "Import every font listed in a YAML manifest; already-present fonts are skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := LoadManifest(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := c.openCatalog(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			added, skipped := 0, 0
			for _, entry := range manifest.Fonts {
				uploadedBy := entry.UploadedBy
				if uploadedBy == "" {
					uploadedBy = defaultUploader
				}
				_, ok, err := store.importFile(ctx, entry.Path, uploadedBy)
				if err != nil {
					return store.finish(ctx, added, err)
				}
				if ok {
					added++
				} else {
					skipped++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d fonts, %d already present\n", added, skipped)
			return store.finish(ctx, added, nil)
		},
	}
}
