package publish

import (
	"fmt"
	"strings"

	"github.com/datawire/pyindex/pkg/config"
)

// An Action is one of Register, Update, or Delete.
type Action interface {
	isAction()
}

// Register adds a new listing.
type Register struct {
	Name        string
	Version     string
	Author      string
	Description string
	Homepage    string
}

// Update appends a version to an existing listing.
type Update struct {
	Name    string
	Version string
}

// Delete removes a listing and its artifacts.
type Delete struct {
	Name string
}

func (Register) isAction() {}
func (Update) isAction()   {}
func (Delete) isAction()   {}

// ParseAction validates pkg and turns it in to an Action.  The action name is
// case-insensitive.
func ParseAction(pkg config.Package) (Action, error) {
	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToUpper(strings.TrimSpace(pkg.Action)) {
	case "REGISTER":
		return Register{
			Name:        pkg.Name,
			Version:     pkg.Version,
			Author:      pkg.Author,
			Description: pkg.Description,
			Homepage:    pkg.Homepage,
		}, nil
	case "UPDATE":
		return Update{
			Name:    pkg.Name,
			Version: pkg.Version,
		}, nil
	case "DELETE":
		return Delete{
			Name: pkg.Name,
		}, nil
	default:
		return nil, fmt.Errorf("%s: unknown action %q (expected REGISTER, UPDATE, or DELETE)",
			config.EnvAction, pkg.Action)
	}
}
