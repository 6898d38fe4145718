package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/lawlens/internal/taxonomy"
)

var catalogYAML bool

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List clause types, risk levels and anchor sentences",
	Long: `Catalog prints the clause taxonomy used for matching. With --catalog
or extraction.catalog_path set, the overridden anchors are shown.

Use --yaml to print a file that can be edited and passed back with --catalog.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := taxonomy.DefaultCatalog()
		if path := viper.GetString("extraction.catalog_path"); path != "" {
			var err error
			if catalog, err = taxonomy.LoadCatalog(path); err != nil {
				return err
			}
		}
		if catalogYAML {
			return writeCatalogYAML(cmd.OutOrStdout(), catalog)
		}
		if err := writeCatalogTable(cmd.OutOrStdout(), catalog); err != nil {
			return err
		}
		if viper.GetBool("output.verbose") {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", risksLegend())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().BoolVar(&catalogYAML, "yaml", false, "print the catalog in the --catalog file format")
}

func writeCatalogTable(w io.Writer, catalog []taxonomy.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tRISK\tANCHORS")
	fmt.Fprintln(tw, "----\t----\t-------")
	for _, e := range catalog {
		for i, anchor := range e.Anchors {
			if i == 0 {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Type, e.Type.Risk(), anchor)
				continue
			}
			fmt.Fprintf(tw, "\t\t%s\n", anchor)
		}
	}
	return tw.Flush()
}

func writeCatalogYAML(w io.Writer, catalog []taxonomy.Entry) error {
	var root yaml.Node
	root.Kind = yaml.MappingNode
	for _, e := range catalog {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, a := range e.Anchors {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: a})
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Type.String()},
			seq,
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}

// risksLegend is printed under the table in verbose mode.
func risksLegend() string {
	return strings.Join([]string{
		"high:   Indemnification, Liability, Non-Compete",
		"medium: everything not listed as high or low",
		"low:    Termination, Governing Law, Severance, unmatched paragraphs",
	}, "\n")
}
