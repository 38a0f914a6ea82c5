package commands

import (
	"fmt"

	"github.com/pterm/pterm"
)

// StatusReporter renders editor-lifecycle status to the terminal: the
// command-line equivalent of the status line a GUI build would show
// directly in its window chrome.
type StatusReporter struct{}

// Opened reports a successfully opened document.
func (StatusReporter) Opened(path, language string) {
	if language == "" {
		pterm.Printf("%s %s\n", pterm.Green("opened"), path)
		return
	}
	pterm.Printf("%s %s %s\n", pterm.Green("opened"), path, pterm.Gray(fmt.Sprintf("(%s)", language)))
}

// ServerStarting reports that a language server is being spawned.
func (StatusReporter) ServerStarting(language, command string) {
	pterm.Printf("%s %s %s\n", pterm.LightCyan("starting"), language, pterm.Gray(command))
}

// ServerReady reports a language server reached the Ready state.
func (StatusReporter) ServerReady(language string) {
	pterm.Success.Printf("%s language server ready\n", language)
}

// ServerFailed reports a language server failed to start; eddy keeps
// editing usable without it.
func (StatusReporter) ServerFailed(language string, err error) {
	pterm.Warning.Printf("%s language server unavailable: %v\n", language, err)
}

// Error reports a hard failure to the user.
func (StatusReporter) Error(context string, err error) {
	pterm.Error.Printf("%s: %v\n", context, err)
}
