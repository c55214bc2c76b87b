// Package access computes effective permission levels and authorizes
// project mutations against a static action table.
package access

import (
	"github.com/4and4/milo-server/internal/domain"
	domerrors "github.com/4and4/milo-server/internal/domain/errors"
)

// Action is a project operation subject to permission checks.
type Action int

const (
	ActionRead Action = iota
	ActionEditContent
	ActionRename
	ActionTrash
	ActionTogglePublic
	ActionManageCollaborators
	ActionDelete
)

// minLevel is the action to minimum-level table. Owner passes every check
// because LevelOwner orders above LevelAdmin.
var minLevel = map[Action]domain.Level{
	ActionRead:                domain.LevelView,
	ActionEditContent:         domain.LevelEdit,
	ActionRename:              domain.LevelAdmin,
	ActionTrash:               domain.LevelAdmin,
	ActionTogglePublic:        domain.LevelAdmin,
	ActionManageCollaborators: domain.LevelAdmin,
	ActionDelete:              domain.LevelAdmin,
}

// Resolve computes the effective level of an identity on a project. An
// empty email is an anonymous identity: it is never matched against the
// collaborator map and resolves to at most view.
func Resolve(p *domain.Project, email string) domain.Level {
	if email == "" {
		if p.Public {
			return domain.LevelView
		}
		return domain.LevelNone
	}
	if email == p.Owner {
		return domain.LevelOwner
	}
	if lvl, ok := p.Collaborator(email); ok {
		return lvl
	}
	if p.Public {
		return domain.LevelView
	}
	return domain.LevelNone
}

// Authorize returns nil when the level meets the action's minimum, and
// ErrForbidden otherwise. The deny is an explicit error so callers can
// distinguish it from a missing project.
func Authorize(lvl domain.Level, action Action) error {
	min, ok := minLevel[action]
	if !ok || lvl < min {
		return domerrors.ErrForbidden
	}
	return nil
}

// CanModify reports whether the level allows saving content changes.
func CanModify(lvl domain.Level) bool { return lvl >= domain.LevelEdit }

// CanRename reports whether the level allows renaming and other metadata
// mutations.
func CanRename(lvl domain.Level) bool { return lvl >= domain.LevelAdmin }
