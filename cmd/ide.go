package cmd

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vividtools/vivid-ide/cli"
	"github.com/vividtools/vivid-ide/config"
	"github.com/vividtools/vivid-ide/logging"
	"github.com/vividtools/vivid-ide/pkg/paths"
	"github.com/vividtools/vivid-ide/pkg/runtime"
	"github.com/vividtools/vivid-ide/pkg/watcher"
	"github.com/vividtools/vivid-ide/store"
	"github.com/vividtools/vivid-ide/tui"
	"github.com/vividtools/vivid-ide/util/pathutil"
)

// RunIDE is the root command's RunE: it connects to the runtime, builds the
// store and the TUI, and blocks until the user quits. An optional argument
// is a project directory to load on startup.
func RunIDE(c *cobra.Command, args []string) error {
	logger := logging.NewLogger("main")
	opts := cli.GetOptions(c)

	cfg, err := loadConfig(opts.ConfigFile)
	if err != nil {
		return err
	}

	socket := cfg.Runtime.Socket
	if socket == "" {
		socket = paths.RuntimeSocket()
	} else if socket, err = pathutil.Expand(socket); err != nil {
		return err
	}

	bridge := runtime.NewBridge(socket,
		runtime.WithCommandTimeout(time.Duration(cfg.Runtime.CommandTimeoutMS)*time.Millisecond))
	defer bridge.Close()
	client := runtime.NewClient(bridge)

	sender := tui.NewSender()
	st := store.New(client,
		store.WithEventRelay(tui.RelayEvents(sender)),
		store.WithReadyPoll(cfg.Runtime.ReadyPollMS, cfg.Runtime.ReadyTimeoutMS),
		store.WithReconcileInterval(cfg.Runtime.ReconcileMS))

	tui.InitializeTUI()
	app := tui.NewApp(st, cfg, sender)
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion())
	sender.Attach(program)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		st.Initialize(ctx)
		if len(args) > 0 {
			path, err := pathutil.Expand(args[0])
			if err != nil {
				logger.WithError(err).Error("Invalid project path")
				return
			}
			loadCtx, loadCancel := context.WithTimeout(ctx, 30*time.Second)
			defer loadCancel()
			if err := client.LoadProject(loadCtx, path); err != nil {
				logger.WithError(err).WithField("path", path).Error("Failed to load project")
			}
		}
	}()

	stopWatching := watchProject(ctx, st, cfg, logger)
	defer stopWatching()

	_, err = program.Run()
	return err
}

func loadConfig(configFile string) (*config.Config, error) {
	path, err := cli.InitConfig(configFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

// watchProject keeps a save watcher on the loaded project root and triggers
// a hot reload when sources change on disk. The watcher follows the project
// as it changes.
func watchProject(ctx context.Context, st *store.Store, cfg *config.Config, logger *logrus.Entry) func() {
	var mu sync.Mutex
	var current *watcher.Watcher
	var root string

	reload := func(paths []string) {
		logger.WithField("changed", len(paths)).Debug("Sources changed, reloading")
		reloadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := st.Client().ReloadProject(reloadCtx); err != nil {
			logger.WithError(err).Warn("Hot reload failed")
		}
	}

	swap := func(path string) {
		if path != "" {
			// Watch the resolved directory so symlinked project roots work.
			if resolved, err := pathutil.Canonical(path); err == nil {
				path = resolved
			}
		}
		mu.Lock()
		defer mu.Unlock()
		if path == root {
			return
		}
		if current != nil {
			current.Close()
			current = nil
		}
		root = path
		if path == "" {
			return
		}
		w, err := watcher.New(path, cfg.Watcher, reload)
		if err != nil {
			logger.WithError(err).WithField("path", path).Warn("Failed to watch project")
			return
		}
		current = w
		logger.WithField("path", path).Debug("Watching project sources")
	}

	unsub := st.SubscribeOnKey(store.KeyProjectPath, func(snap store.AppState) {
		swap(snap.ProjectPath)
	})
	swap(st.Get().ProjectPath)

	return func() {
		unsub()
		swap("")
	}
}
