package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	domerrors "github.com/4and4/milo-server/internal/domain/errors"
)

// Session owns the editable state of one open project: the workspace,
// the current project key (empty while unsaved), the permission flags and
// the change monitor.
//
// The monitor is a two-state machine per load: Clean, then on the first
// edit that changes the serialized form the listener removes itself,
// marks the session dirty and triggers at most one automatic save. A
// successful save or load re-arms it.
type Session struct {
	api      StorageAPI
	ws       Workspace
	notifier StatusNotifier
	registry Registry
	importer Importer
	backup   BackupStore
	log      zerolog.Logger

	pageURL   string
	anonymous bool

	mu            sync.Mutex
	projectKey    string
	projectName   string
	pages         string
	markdownPages string
	canModify     bool
	canRename     bool
	unsubscribe   func()

	// loadSeq orders loads; a response is discarded when a newer load has
	// been initiated since the request went out.
	loadSeq atomic.Uint64
}

// Options configures a Session. API and Workspace are required.
type Options struct {
	API       StorageAPI
	Workspace Workspace
	Notifier  StatusNotifier
	Registry  Registry
	Importer  Importer
	Backup    BackupStore
	// PageURL keys the local backup; pass the page address sans fragment.
	PageURL   string
	Anonymous bool
	Logger    zerolog.Logger
}

// NewSession creates a session. Anonymous sessions never persist and
// never trigger automatic saves.
func NewSession(opts Options) *Session {
	s := &Session{
		api:       opts.API,
		ws:        opts.Workspace,
		notifier:  opts.Notifier,
		registry:  opts.Registry,
		importer:  opts.Importer,
		backup:    opts.Backup,
		pageURL:   opts.PageURL,
		anonymous: opts.Anonymous,
		log:       opts.Logger,
	}
	if s.notifier == nil {
		s.notifier = NopNotifier{}
	}
	if s.backup == nil {
		s.backup = NewMemoryBackupStore()
	}
	// A fresh unsaved workspace is modifiable by its author.
	s.canModify = !opts.Anonymous
	s.canRename = !opts.Anonymous
	return s
}

// Close tears the session down, detaching any armed change listener.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked()
}

// ProjectKey returns the current key, or "" for an unsaved project.
func (s *Session) ProjectKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectKey
}

// CanModify reports whether saves are permitted for the loaded project.
func (s *Session) CanModify() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canModify
}

// SetProjectName records the name sent with the next save.
func (s *Session) SetProjectName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectName = name
}

// SetPages records the auxiliary page content sent with the next save.
func (s *Session) SetPages(pages, markdownPages string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = pages
	s.markdownPages = markdownPages
}

// Save persists the current workspace. Anonymous sessions return
// immediately without any network call. Local edits survive every
// failure path.
func (s *Session) Save(ctx context.Context, showAlert bool) error {
	if s.anonymous {
		return nil
	}
	xml, err := s.ws.Serialize()
	if err != nil {
		s.notifier.ShowAlert("Project Save Failed!", err.Error(), "error")
		return err
	}
	s.mu.Lock()
	req := SaveRequest{
		ProjectName:   s.projectName,
		ProjectKey:    s.projectKey,
		XML:           xml,
		Pages:         s.pages,
		MarkdownPages: s.markdownPages,
	}
	s.mu.Unlock()

	resp, err := s.api.Save(ctx, req)
	if err != nil {
		s.notifier.ShowAlert("Project Save Failed!", err.Error(), "error")
		return err
	}
	if resp.Status != 200 {
		s.notifier.ShowAlert("Project Save Failed!", fmt.Sprintf("Error Code: %d", resp.Status), "error")
		return &ProtocolError{Status: resp.Status, Message: resp.Message}
	}

	s.mu.Lock()
	s.projectKey = resp.Key
	s.canModify = true
	s.mu.Unlock()

	if showAlert {
		s.notifier.ShowAlert("", "Your project was saved successfully!", "success")
	}
	s.notifier.SetStatusBar("All changes saved!")
	s.armMonitor(ctx)
	return nil
}

// Load fetches the project under key, prunes the restored document and
// applies it. A response that arrives after a newer Load was initiated is
// discarded without touching the workspace.
func (s *Session) Load(ctx context.Context, key string) error {
	seq := s.loadSeq.Add(1)
	current := func() bool { return s.loadSeq.Load() == seq }

	resp, err := s.api.Load(ctx, key)
	if !current() {
		return nil
	}
	if err != nil {
		s.clearKey()
		s.notifier.ShowAlert("Failed to load project", err.Error(), "error")
		return err
	}
	if resp.Status != 200 {
		s.clearKey()
		s.notifier.ShowAlert("Failed to load project", fmt.Sprintf("Error Code: %d", resp.Status), "error")
		return &ProtocolError{Status: resp.Status, Message: resp.Message}
	}

	if err := s.pruneAndApply(ctx, resp.XML, current); err != nil {
		// The prior workspace is untouched on either branch; the user
		// keeps working.
		if errors.Is(err, domerrors.ErrMalformedContent) {
			s.notifier.ShowAlert("Failed to load project", "The saved project could not be parsed.", "error")
		} else {
			s.notifier.ShowAlert("Failed to load project", err.Error(), "error")
		}
		return err
	}
	if !current() {
		return nil
	}

	s.mu.Lock()
	s.projectKey = resp.ProjectKey
	s.canModify = resp.CanModify
	s.canRename = resp.CanRename
	if resp.Project != nil {
		s.projectName = resp.Project.Name
	}
	s.mu.Unlock()

	if resp.Project != nil {
		s.notifier.SetProjectName(resp.Project.Name)
	}
	s.notifier.ApplyPermissions(resp.CanModify, resp.CanRename)
	s.armMonitor(ctx)
	return nil
}

// BackupNow writes the serialized workspace to the local fallback cache.
// Bind this to the page unload event.
func (s *Session) BackupNow() {
	xml, err := s.ws.Serialize()
	if err != nil {
		return
	}
	s.backup.Put(s.pageURL, xml)
}

// RestoreBackup loads the last locally cached content, if any. Used when
// no project key is present in the page address.
func (s *Session) RestoreBackup(ctx context.Context) error {
	xml, ok := s.backup.Get(s.pageURL)
	if !ok {
		return nil
	}
	seq := s.loadSeq.Add(1)
	current := func() bool { return s.loadSeq.Load() == seq }
	if err := s.pruneAndApply(ctx, xml, current); err != nil {
		return err
	}
	s.armMonitor(ctx)
	return nil
}

func (s *Session) pruneAndApply(ctx context.Context, xmlText string, current func() bool) error {
	result, err := Prune(ctx, xmlText, s.registry, s.importer)
	if err != nil {
		return err
	}
	if len(result.Stripped) > 0 {
		s.log.Warn().Strs("types", result.Stripped).Msg("stripped undefined block references")
	}
	// Apply only after every import has completed and only if no newer
	// load has superseded this one.
	if !current() {
		return nil
	}
	s.ws.Clear()
	return s.ws.Apply(result.XML)
}

// armMonitor establishes the baseline snapshot and attaches the one-shot
// change listener.
func (s *Session) armMonitor(ctx context.Context) {
	if s.anonymous {
		return
	}
	baseline, err := s.ws.Serialize()
	if err != nil {
		return
	}

	s.mu.Lock()
	s.detachLocked()
	var once sync.Once
	unsubscribe := s.ws.Subscribe(func() {
		now, err := s.ws.Serialize()
		if err != nil || now == baseline {
			return
		}
		once.Do(func() {
			s.notifier.SetStatusBar("You have unsaved changes")
			s.mu.Lock()
			s.detachLocked()
			canModify := s.canModify
			s.mu.Unlock()
			if canModify {
				if err := s.Save(ctx, false); err != nil {
					s.log.Warn().Err(err).Msg("automatic save failed")
				}
			}
		})
	})
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
}

func (s *Session) detachLocked() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Session) clearKey() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectKey = ""
}
