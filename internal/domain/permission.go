package domain

import "fmt"

// Level is a project permission level. Levels are totally ordered by
// capability; comparing two Levels with < and >= is meaningful.
type Level int

const (
	LevelNone Level = iota
	LevelView
	LevelEdit
	LevelAdmin
	// LevelOwner is implicit: it is resolved for the project owner and is
	// never stored in a collaborator map.
	LevelOwner
)

var levelNames = map[Level]string{
	LevelNone:  "none",
	LevelView:  "view",
	LevelEdit:  "edit",
	LevelAdmin: "admin",
	LevelOwner: "owner",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return "none"
}

// ParseLevel maps a stored permission string to a Level. Only the three
// grantable levels are valid; everything else is an error so corrupted
// grants surface instead of silently widening access.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "view":
		return LevelView, nil
	case "edit":
		return LevelEdit, nil
	case "admin":
		return LevelAdmin, nil
	}
	return LevelNone, fmt.Errorf("unknown permission level %q", s)
}

// MarshalText encodes the level as its name for JSON/BSON maps.
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(b []byte) error {
	lvl, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = lvl
	return nil
}
