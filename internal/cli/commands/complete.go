package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.lsp.dev/uri"

	"github.com/flow-design/flow-helper/internal/completion"
	"github.com/flow-design/flow-helper/internal/cli/ui"
	"github.com/flow-design/flow-helper/internal/tooling"
)

var (
	completeLine      int
	completeCharacter int
	completeTrigger   string
	completeLanguage  string
	completeJSON      bool
)

// completionJSON is the --json form of one suggestion
type completionJSON struct {
	Label      string            `json:"label"`
	Kind       string            `json:"kind"`
	Detail     string            `json:"detail,omitempty"`
	InsertText string            `json:"insertText"`
	Snippet    bool              `json:"snippet"`
	SortText   string            `json:"sortText,omitempty"`
	Range      *completion.Range `json:"range,omitempty"`
}

// NewCompleteCommand creates the complete command
func NewCompleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <file>",
		Short: "Print completions at a position in a file",
		Long: `Print the suggestions an editor would get at a position in a file.

Lines and characters are zero-based; characters count UTF-16 code units,
as in LSP. The language is taken from the file extension (.vue, .html)
unless --language is given.

Examples:
  flow-helper complete App.vue --line 3 --character 5
  flow-helper complete index.html --line 0 --character 13 --trigger '"' --json`,
		Args: cobra.ExactArgs(1),
		RunE: runComplete,
	}

	cmd.Flags().IntVarP(&completeLine, "line", "l", 0, "Zero-based line of the cursor")
	cmd.Flags().IntVarP(&completeCharacter, "character", "c", 0, "Zero-based character of the cursor")
	cmd.Flags().StringVarP(&completeTrigger, "trigger", "t", "", "Character that triggered completion")
	cmd.Flags().StringVar(&completeLanguage, "language", "", "Language identifier (vue, html)")
	cmd.Flags().BoolVar(&completeJSON, "json", false, "Output completions as JSON")

	return cmd
}

func runComplete(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	api, err := tooling.NewAPIWithConfig(&tooling.Config{Catalog: cat})
	if err != nil {
		return err
	}

	language := completeLanguage
	if language == "" {
		language = tooling.LanguageIDFromPath(path)
	}
	if completion.DialectFor(language) == completion.DialectUnknown {
		fmt.Fprint(cmd.ErrOrStderr(), ui.Warning(
			fmt.Sprintf("unknown language %q: tags will not be suggested (use --language)", language), noColor))
	}

	docURI := string(uri.File(path))
	doc := api.OpenDocument(docURI, language, string(content), 1)
	if completeLine < 0 || completeLine >= doc.LineCount() {
		return fmt.Errorf("line %d is outside %s (%d lines)", completeLine, args[0], doc.LineCount())
	}
	if completeCharacter < 0 {
		return fmt.Errorf("character must not be negative, got %d", completeCharacter)
	}

	pos := completion.Position{Line: completeLine, Character: completeCharacter}
	items, err := api.GetCompletions(cmd.Context(), docURI, pos, completeTrigger, cfg.ToOptions())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if completeJSON {
		result := make([]completionJSON, 0, len(items))
		for _, item := range items {
			result = append(result, completionJSON{
				Label:      item.Label,
				Kind:       item.Kind.String(),
				Detail:     item.Detail,
				InsertText: item.InsertText,
				Snippet:    item.Snippet,
				SortText:   item.SortText,
				Range:      item.Range,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if len(items) == 0 {
		color.New(color.FgHiBlack).Fprintln(out, "No completions")
		return nil
	}

	table := ui.NewTable(out, []string{"Label", "Kind", "Insert"}, &ui.TableOptions{NoColor: noColor})
	for _, item := range items {
		table.AddRow(item.Label, item.Kind.String(), strings.ReplaceAll(item.InsertText, "\n", `\n`))
	}
	table.Render()
	return nil
}
