package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vividtools/vivid-ide/pkg/paths"
)

// PathsOutput lists the XDG-compliant locations vivid uses.
type PathsOutput struct {
	ConfigDir     string `json:"config_dir"`
	DataDir       string `json:"data_dir"`
	StateDir      string `json:"state_dir"`
	RuntimeSocket string `json:"runtime_socket"`
}

// NewPathsCmd creates the 'paths' command, for debugging where config,
// state and the runtime socket live on this machine.
func NewPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the directories and socket path vivid uses",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := PathsOutput{
				ConfigDir:     paths.ConfigDir(),
				DataDir:       paths.DataDir(),
				StateDir:      paths.StateDir(),
				RuntimeSocket: paths.RuntimeSocket(),
			}

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("config:  %s\n", out.ConfigDir)
			fmt.Printf("data:    %s\n", out.DataDir)
			fmt.Printf("state:   %s\n", out.StateDir)
			fmt.Printf("socket:  %s\n", out.RuntimeSocket)
			return nil
		},
	}
}
