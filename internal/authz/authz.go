// Package authz enforces role-based route permissions with casbin.
package authz

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/casbin/casbin/v3"
)

//go:embed model.conf policy.csv
var embedFS embed.FS

// Enforcer wraps the casbin enforcer loaded from the embedded model and policy.
type Enforcer struct {
	e *casbin.Enforcer
}

// NewEnforcer creates the enforcer. Embedded model and policy files are used.
func NewEnforcer() (*Enforcer, error) {
	dir, err := os.MkdirTemp("", "postbase-casbin-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := writeEmbedToDir(dir, "model.conf", "policy.csv"); err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(
		filepath.Join(dir, "model.conf"),
		filepath.Join(dir, "policy.csv"),
	)
	if err != nil {
		return nil, err
	}
	return &Enforcer{e: e}, nil
}

// Allowed reports whether a role may perform act on the given route.
func (e *Enforcer) Allowed(role, obj, act string) (bool, error) {
	return e.e.Enforce(role, obj, act)
}

func writeEmbedToDir(dir string, names ...string) error {
	for _, name := range names {
		data, err := embedFS.ReadFile(name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
			return err
		}
	}
	return nil
}
