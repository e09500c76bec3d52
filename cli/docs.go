package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// CommandDoc is a serializable description of one command, consumed by
// ecosystem tooling such as the MCP bridge.
type CommandDoc struct {
	Name        string       `json:"name"`
	Use         string       `json:"use"`
	Short       string       `json:"short"`
	Long        string       `json:"long,omitempty"`
	Flags       []FlagDoc    `json:"flags,omitempty"`
	Subcommands []CommandDoc `json:"subcommands,omitempty"`
}

// FlagDoc describes a single flag.
type FlagDoc struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Usage     string `json:"usage"`
	Default   string `json:"default,omitempty"`
}

// NewDocsCommand creates a 'docs' command that prints the command tree as
// JSON so other tools can discover what this binary can do.
func NewDocsCommand(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:    "docs",
		Short:  "Print the command tree as JSON",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := json.MarshalIndent(describeCommand(root), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func describeCommand(cmd *cobra.Command) CommandDoc {
	doc := CommandDoc{
		Name:  cmd.Name(),
		Use:   cmd.UseLine(),
		Short: cmd.Short,
		Long:  cmd.Long,
	}
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		doc.Flags = append(doc.Flags, FlagDoc{
			Name:      f.Name,
			Shorthand: f.Shorthand,
			Usage:     f.Usage,
			Default:   f.DefValue,
		})
	})
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			doc.Subcommands = append(doc.Subcommands, describeCommand(sub))
		}
	}
	return doc
}
