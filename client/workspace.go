// Package client implements the editor-side storage session: change
// monitoring, save/load against the storage protocol, pruning of stale
// block references and the local backup fallback.
package client

import "context"

// Workspace is the live block workspace the session persists. Serialize
// must be deterministic for an unchanged workspace; change detection
// compares serialized forms.
type Workspace interface {
	Serialize() (string, error)
	// Apply loads serialized content into the workspace.
	Apply(xml string) error
	// Clear empties the workspace before a fresh Apply, to avoid merging.
	Clear()
	// Subscribe registers a change listener and returns its remover.
	Subscribe(fn func()) (unsubscribe func())
}

// Registry answers whether a block type is currently defined in the
// runtime.
type Registry interface {
	Defined(blockType string) bool
}

// Importer resolves dynamic block definitions from optional extensions.
// Available reports whether the named dataset can be imported on demand;
// Import performs the asynchronous import.
type Importer interface {
	Available(dataset string) bool
	Import(ctx context.Context, dataset string) error
}

// StatusNotifier receives user-visible session feedback. Implementations
// drive the editor chrome (status bar, alerts, save/clone affordances).
type StatusNotifier interface {
	ShowAlert(title, message, kind string)
	// SetStatusBar replaces the status text. Transience (clearing a
	// "saved" notice after a delay) is the implementation's concern; the
	// session only reports state changes.
	SetStatusBar(text string)
	SetProjectName(name string)
	// ApplyPermissions shows or hides the save vs. clone affordances.
	ApplyPermissions(canModify, canRename bool)
}

// NopNotifier discards all feedback.
type NopNotifier struct{}

func (NopNotifier) ShowAlert(title, message, kind string) {}
func (NopNotifier) SetStatusBar(text string) {}
func (NopNotifier) SetProjectName(name string) {}
func (NopNotifier) ApplyPermissions(canModify, canRename bool) {}
