package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/flow-design/flow-helper/internal/cli/config"
	"github.com/flow-design/flow-helper/internal/cli/ui"
)

var (
	initYes   bool
	initForce bool
)

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a flow-helper.yml config file",
		Long: `Create a flow-helper.yml config file in the current directory.

You are asked for the snippet indent size, the quote style and an optional
custom catalog file. With --yes the defaults are written without prompts.

Examples:
  flow-helper init
  flow-helper init --yes`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Write the defaults without prompting")
	cmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")

	return cmd
}

// initAnswers receives the survey answers
type initAnswers struct {
	IndentSize string `survey:"indent_size"`
	Quotes     string `survey:"quotes"`
	Catalog    string `survey:"catalog"`
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = config.FileName + ".yml"
	}

	cfg := config.Default()
	if !initYes {
		if err := askConfig(cfg); err != nil {
			return err
		}
	}

	if err := config.Write(path, cfg, initForce); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ui.WriteSuccess(out, "Created "+path, noColor)
	color.New(color.FgCyan).Fprintln(out, "  Start the language server with: flow-helper lsp")
	return nil
}

func askConfig(cfg *config.Config) error {
	questions := []*survey.Question{
		{
			Name: "indent_size",
			Prompt: &survey.Input{
				Message: "Snippet indent size:",
				Default: strconv.Itoa(cfg.IndentSize),
			},
			Validate: validateIndentSize,
		},
		{
			Name: "quotes",
			Prompt: &survey.Select{
				Message: "Attribute quote style:",
				Options: []string{"double", "single"},
				Default: cfg.Quotes,
			},
		},
		{
			Name: "catalog",
			Prompt: &survey.Input{
				Message: "Custom catalog file (empty for the built-in Flow Design Vue catalog):",
			},
			Validate: validateCatalogPath,
		},
	}

	var answers initAnswers
	if err := survey.Ask(questions, &answers); err != nil {
		return err
	}

	indent, err := strconv.Atoi(answers.IndentSize)
	if err != nil {
		return err
	}
	cfg.IndentSize = indent
	cfg.Quotes = answers.Quotes
	cfg.Catalog = answers.Catalog
	return nil
}

func validateIndentSize(ans interface{}) error {
	s, _ := ans.(string)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("indent size must be a positive number")
	}
	return nil
}

func validateCatalogPath(ans interface{}) error {
	s, _ := ans.(string)
	if s == "" {
		return nil
	}
	info, err := os.Stat(s)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s does not exist", s)
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", s)
	}
	return nil
}
