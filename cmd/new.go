package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vividtools/vivid-ide/config"
	"github.com/vividtools/vivid-ide/errors"
	"github.com/vividtools/vivid-ide/pkg/paths"
	"github.com/vividtools/vivid-ide/pkg/runtime"
	"github.com/vividtools/vivid-ide/util/pathutil"
	"github.com/vividtools/vivid-ide/util/sanitize"
)

const basicChainTemplate = `// %s
//
// Build the operator chain for this sketch. Every operator added here shows
// up in the Parameters panel, and saving this file hot-reloads the chain.

#include <vivid/chain.h>

void build(vivid::Chain& chain) {
    auto& noise = chain.add<vivid::Noise>("noise1");
    noise.set("scale", 4.0f);

    auto& blur = chain.add<vivid::Blur>("blur1");
    blur.set("radius", 2.5f);

    chain.connect(noise, blur);
    chain.output(blur);
}
`

const shaderChainTemplate = `// %s
//
// A minimal fragment-shader sketch. Edit shader.frag next to this file; the
// Shader operator reloads it on save.

#include <vivid/chain.h>

void build(vivid::Chain& chain) {
    auto& shader = chain.add<vivid::Shader>("shader1");
    shader.set("source", "shader.frag");

    chain.output(shader);
}
`

const shaderFragTemplate = `#version 330 core

uniform float u_time;
uniform vec2 u_resolution;
out vec4 fragColor;

void main() {
    vec2 uv = gl_FragCoord.xy / u_resolution;
    fragColor = vec4(uv, 0.5 + 0.5 * sin(u_time), 1.0);
}
`

const projectConfigTemplate = `version: "1"

# theme: kanagawa

editor:
  tab_width: 4
  auto_reload_on_save: true
`

const projectGitignore = `build/
.vivid/
*.o
*.so
*.dylib
`

// NewNewCmd creates the 'new' command: scaffold a project directory with a
// starter chain the runtime can load immediately.
func NewNewCmd() *cobra.Command {
	var template string
	var parentDir string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Scaffold a new vivid project",
		Long: `Creates a project directory with a vivid.yml and a starter chain source.

Examples:
  # A basic operator chain
  vivid new plasma

  # A fragment shader sketch in a specific directory
  vivid new glow --template shader --dir ~/sketches`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := sanitize.ForProjectName(args[0])
			if name == "" {
				return errors.InvalidInput(fmt.Sprintf("cannot derive a project name from %q", args[0]))
			}

			dir, err := pathutil.Expand(parentDir)
			if err != nil {
				return err
			}
			root := filepath.Join(dir, name)

			files, err := scaffoldFiles(name, template)
			if err != nil {
				return err
			}

			if _, err := os.Stat(root); err == nil {
				return errors.ProjectCreateFailed(root, fmt.Errorf("directory already exists"))
			}

			// A running runtime creates the project itself so it can open it
			// right away; otherwise scaffold locally.
			if created, err := createViaRuntime(dir, name, template); err != nil {
				return err
			} else if created {
				fmt.Printf("Created %s\n", root)
				return nil
			}

			if err := os.MkdirAll(root, 0o755); err != nil {
				return errors.ProjectCreateFailed(root, err)
			}
			for rel, content := range files {
				if err := os.WriteFile(filepath.Join(root, rel), []byte(content), 0o644); err != nil {
					return errors.ProjectCreateFailed(root, err)
				}
			}

			fmt.Printf("Created %s\n", root)
			fmt.Printf("  cd %s && vivid\n", root)
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "basic",
		"Project template: basic, shader")
	cmd.Flags().StringVarP(&parentDir, "dir", "d", ".",
		"Parent directory for the new project")
	return cmd
}

func createViaRuntime(dir, name, template string) (bool, error) {
	cfg, err := loadConfig("")
	if err != nil {
		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}
	socket := cfg.Runtime.Socket
	if socket == "" {
		socket = paths.RuntimeSocket()
	}

	bridge := runtime.NewBridge(socket, runtime.WithCommandTimeout(30*time.Second))
	defer bridge.Close()
	if !bridge.IsRunning() {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client := runtime.NewClient(bridge)
	if err := client.CreateProject(ctx, dir, name, template); err != nil {
		return false, err
	}
	return true, nil
}

func scaffoldFiles(name, template string) (map[string]string, error) {
	files := map[string]string{
		"vivid.yml":  projectConfigTemplate,
		".gitignore": projectGitignore,
	}
	switch template {
	case "basic":
		files["chain.cpp"] = fmt.Sprintf(basicChainTemplate, name)
	case "shader":
		files["chain.cpp"] = fmt.Sprintf(shaderChainTemplate, name)
		files["shader.frag"] = shaderFragTemplate
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown template %q (want basic or shader)", template))
	}
	return files, nil
}
