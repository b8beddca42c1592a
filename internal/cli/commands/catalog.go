package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flow-design/flow-helper/internal/catalog"
	"github.com/flow-design/flow-helper/internal/cli/ui"
	"github.com/flow-design/flow-helper/internal/completion"
	"github.com/flow-design/flow-helper/internal/markup"
)

// errComponentNotFound is returned by "catalog show" for an unknown tag
var errComponentNotFound = errors.New("component not found")

// NewCatalogCommand creates the catalog command
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the component catalog",
		Long: `Inspect the component catalog completion is driven by.

The built-in Flow Design Vue catalog is used unless the config file names
a custom catalog (JSON, JSON with comments, or YAML).`,
	}

	cmd.AddCommand(newCatalogListCommand())
	cmd.AddCommand(newCatalogShowCommand())
	cmd.AddCommand(newCatalogValidateCommand())

	return cmd
}

func newCatalogListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			table := ui.NewTable(out, []string{"Tag", "Attributes", "Sub-tags", "Description"}, &ui.TableOptions{NoColor: noColor})
			for _, tag := range cat.Tags() {
				comp, _ := cat.Component(tag)
				table.AddRow(tag, strconv.Itoa(len(comp.Attributes())), strings.Join(comp.Subtags, ", "), comp.Description)
			}
			table.Render()

			fmt.Fprintf(out, "\n%d components in %s\n", cat.Len(), cat.Library)
			return nil
		},
	}
}

func newCatalogShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <tag>",
		Short: "Show a component's attributes and snippet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}

			tag := args[0]
			comp, ok := cat.Component(tag)
			if !ok {
				suggestions := ui.FindSimilar(tag, cat.Tags(), nil)
				fmt.Fprint(cmd.ErrOrStderr(), ui.ComponentNotFoundError(tag, suggestions, noColor))
				return fmt.Errorf("%w: %s", errComponentNotFound, tag)
			}

			snippet, err := completion.Snippet(cat, tag, cfg.ToOptions(), markup.Format)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui.Header(out, comp.Name, noColor)

			info := ui.NewKeyValueTable(out, noColor)
			info.AddRow("Library", cat.Library)
			info.AddRow("Description", comp.Description)
			info.AddRow("Docs", comp.DocLink)
			info.AddRow("Sub-tags", strings.Join(comp.Subtags, ", "))
			info.Render()

			if attrs := comp.Attributes(); len(attrs) > 0 {
				fmt.Fprintln(out)
				table := ui.NewTable(out, []string{"Attribute", "Type", "Required", "Default", "Values"}, &ui.TableOptions{NoColor: noColor})
				for _, attr := range attrs {
					table.AddRow(attr.Name, attr.Type, yesNo(attr.Required), attr.Default, joinValues(attr.Values))
				}
				table.Render()
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "<"+snippet)
			return nil
		},
	}
}

func newCatalogValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Check that a catalog loads and every tag expands",
		Long: `Load a catalog file and expand every tag into its snippet.

Without a path the configured catalog is checked. Unknown sub-tags and
sub-tag cycles are reported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			path := cfg.Catalog
			if len(args) == 1 {
				path = args[0]
			}

			cat, err := validateCatalog(path, cfg.ToOptions())
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.CatalogError(path, err, noColor))
				return err
			}

			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("catalog is valid: %d components", cat.Len()), noColor)
			return nil
		},
	}
}

// validateCatalog loads the catalog at path and synthesizes every snippet
func validateCatalog(path string, opts completion.Options) (*catalog.Catalog, error) {
	cat, err := catalog.Open(path)
	if err != nil {
		return nil, err
	}
	if cat.Len() == 0 {
		return nil, fmt.Errorf("%w: no components", catalog.ErrMalformedCatalog)
	}
	if _, err := completion.TagItems(cat, opts, markup.Format, nil); err != nil {
		return nil, err
	}
	return cat, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func joinValues(values []catalog.Value) string {
	literals := make([]string, len(values))
	for i, v := range values {
		literals[i] = v.Literal
	}
	return strings.Join(literals, ", ")
}
