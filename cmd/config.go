package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vividtools/vivid-ide/cli"
	"github.com/vividtools/vivid-ide/config"
	"github.com/vividtools/vivid-ide/errors"
)

// NewConfigCmd creates the 'config' command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate vivid configuration",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSchemaCmd())
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after merging",
		Long: `Prints the configuration that results from merging the global
vivid.toml with the project's vivid.yml, with defaults applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			cfg, err := loadConfig(opts.ConfigFile)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the configuration JSON Schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a vivid.yml against the schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			} else {
				opts := cli.GetOptions(cmd)
				found, err := cli.InitConfig(opts.ConfigFile)
				if err != nil {
					return err
				}
				if found == "" {
					return errors.ConfigNotFound("vivid.yml")
				}
				path = found
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			var raw map[string]interface{}
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse "+path)
			}

			validator, err := config.NewSchemaValidator()
			if err != nil {
				return err
			}
			if err := validator.Validate(raw); err != nil {
				return err
			}

			fmt.Printf("%s is valid\n", path)
			return nil
		},
	}
}
