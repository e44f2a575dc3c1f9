// Package cli provides the command-line interface for spritefetch.
package cli

import (
	"github.com/osrs-kit/spritefetch/internal/app"
)

// Global application reference shared by commands. Set once in the root
// command's PersistentPreRunE and cleared on PersistentPostRun.
var globalApp *app.Application

// SetApp stores the Application for commands to access.
func SetApp(a *app.Application) {
	globalApp = a
}

// GetApp retrieves the Application.
func GetApp() *app.Application {
	return globalApp
}
