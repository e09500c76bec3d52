package theme

import (
	"os"

	"github.com/vividtools/vivid-ide/config"
)

// Nerd Font Icons (Private Constants)
const (
	nerdIconProject   = "" // cod-project (U+EB30)
	nerdIconChain     = "" // oct-workflow (U+F52E)
	nerdIconOperator  = "" // oct-dot_fill (U+F444)
	nerdIconSuccess   = "󰄬" // md-check (U+F012C)
	nerdIconError     = "" // cod-error (U+EA87)
	nerdIconWarning   = "" // fa-warning (U+F071)
	nerdIconInfo      = "󰋼" // md-information (U+F02FC)
	nerdIconRunning   = "" // fa-refresh (U+F021)
	nerdIconPending   = "󰦖" // md-progress_clock (U+F0996)
	nerdIconSelect    = "󰱒" // md-checkbox_outline (U+F0C52)
	nerdIconArrow     = "󰁔" // md-arrow_right (U+F0054)
	nerdIconBullet    = "" // oct-dot_fill (U+F444)
	nerdIconShell     = "" // seti-shell (U+E691)
	nerdIconSave      = "󰉉" // md-floppy (U+F0249)
	nerdIconFilter    = "󱣬" // md-filter_check (U+F18EC)
	nerdIconModified  = "󰆓" // md-content_save_edit (U+F0193)
	nerdIconBypassed  = "󰒲" // md-sleep (U+F04B2)
	nerdIconGitBranch = "" // dev-git_branch (U+E725)
)

// ASCII Fallback Icons (Private Constants)
const (
	asciiIconProject   = "◆"
	asciiIconChain     = "⑂"
	asciiIconOperator  = "•"
	asciiIconSuccess   = "✓"
	asciiIconError     = "✗"
	asciiIconWarning   = "⚠"
	asciiIconInfo      = "ℹ"
	asciiIconRunning   = "◐"
	asciiIconPending   = "…"
	asciiIconSelect    = "▶"
	asciiIconArrow     = "→"
	asciiIconBullet    = "•"
	asciiIconShell     = "▶"
	asciiIconSave      = "[S]"
	asciiIconFilter    = "⊲"
	asciiIconModified  = "*"
	asciiIconBypassed  = "~"
	asciiIconGitBranch = "⎇"
)

// Public Icon Variables
var (
	IconProject   string
	IconChain     string
	IconOperator  string
	IconSuccess   string
	IconError     string
	IconWarning   string
	IconInfo      string
	IconRunning   string
	IconPending   string
	IconSelect    string
	IconArrow     string
	IconBullet    string
	IconShell     string
	IconSave      string
	IconFilter    string
	IconModified  string
	IconBypassed  string
	IconGitBranch string
)

// init function determines which icon set to use
func init() {
	useASCII := false

	// 1. Check environment variable first
	if os.Getenv("VIVID_ICONS") == "ascii" {
		useASCII = true
	} else {
		// 2. Check config file
		cfg, err := config.LoadDefault()
		if err == nil && cfg != nil {
			var tuiCfg struct {
				Icons string `yaml:"icons"`
			}
			if err := cfg.UnmarshalExtension("tui", &tuiCfg); err == nil && tuiCfg.Icons == "ascii" {
				useASCII = true
			}
		}
	}

	if useASCII {
		IconProject = asciiIconProject
		IconChain = asciiIconChain
		IconOperator = asciiIconOperator
		IconSuccess = asciiIconSuccess
		IconError = asciiIconError
		IconWarning = asciiIconWarning
		IconInfo = asciiIconInfo
		IconRunning = asciiIconRunning
		IconPending = asciiIconPending
		IconSelect = asciiIconSelect
		IconArrow = asciiIconArrow
		IconBullet = asciiIconBullet
		IconShell = asciiIconShell
		IconSave = asciiIconSave
		IconFilter = asciiIconFilter
		IconModified = asciiIconModified
		IconBypassed = asciiIconBypassed
		IconGitBranch = asciiIconGitBranch
	} else {
		IconProject = nerdIconProject
		IconChain = nerdIconChain
		IconOperator = nerdIconOperator
		IconSuccess = nerdIconSuccess
		IconError = nerdIconError
		IconWarning = nerdIconWarning
		IconInfo = nerdIconInfo
		IconRunning = nerdIconRunning
		IconPending = nerdIconPending
		IconSelect = nerdIconSelect
		IconArrow = nerdIconArrow
		IconBullet = nerdIconBullet
		IconShell = nerdIconShell
		IconSave = nerdIconSave
		IconFilter = nerdIconFilter
		IconModified = nerdIconModified
		IconBypassed = nerdIconBypassed
		IconGitBranch = nerdIconGitBranch
	}
}
