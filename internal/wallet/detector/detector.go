// Package detector reports which wallet extensions are available by checking
// for the globals each one injects into the host page.
package detector

import (
	"context"
	"slices"
	"sync"

	"stacksevents/internal/wallet/models"
	pstrings "stacksevents/pkg/platform/strings"
)

// Environment answers whether a global object path is present.
type Environment interface {
	HasGlobal(name string) bool
}

// StaticEnvironment is a fixed set of global names, as reported by the host
// page or configured for a headless deployment.
type StaticEnvironment struct {
	mu      sync.RWMutex
	globals []string
}

func NewStaticEnvironment(globals ...string) *StaticEnvironment {
	return &StaticEnvironment{globals: pstrings.DedupeAndTrim(globals)}
}

func (e *StaticEnvironment) HasGlobal(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Contains(e.globals, name)
}

// Replace swaps the reported globals, e.g. when the browser reports a new
// extension after page load.
func (e *StaticEnvironment) Replace(globals ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.globals = pstrings.DedupeAndTrim(globals)
}

type Detector struct {
	env Environment
}

func New(env Environment) *Detector {
	return &Detector{env: env}
}

// Detect never fails; a nil environment yields the empty set.
func (d *Detector) Detect(_ context.Context) models.ProviderSet {
	if d == nil || d.env == nil {
		return models.ProviderSet{}
	}
	var found []models.ProviderKind
	for _, kind := range models.KnownProviders {
		for _, global := range kind.InjectedGlobals() {
			if d.env.HasGlobal(global) {
				found = append(found, kind)
				break
			}
		}
	}
	return models.NewProviderSet(found...)
}
