// SPDX-License-Identifier: MPL-2.0

package inventory

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"golang.org/x/exp/maps"
)

// DefaultExclude lists the build output directories skipped by Scan.
var DefaultExclude = []string{"target"}

// ErrInventoryMismatch is the sentinel wrapped by MismatchError.
var ErrInventoryMismatch = errors.New("workspace module not accounted for")

type (
	// Inventory is the set of module directory names found in the workspace.
	Inventory map[string]struct{}

	// MismatchError names the workspace modules that no invocation accounted for.
	MismatchError struct {
		Modules []string
		// Catalog is the file where the modules need to be declared.
		Catalog string
	}
)

// Error implements the error interface.
func (e *MismatchError) Error() string {
	noun := "module"
	if len(e.Modules) > 1 {
		noun = "modules"
	}
	return fmt.Sprintf("%s %s present in the workspace but not run; add %s to %s",
		noun, strings.Join(e.Modules, ", "), pronoun(len(e.Modules)), e.Catalog)
}

// Unwrap returns ErrInventoryMismatch for errors.Is() compatibility.
func (e *MismatchError) Unwrap() error { return ErrInventoryMismatch }

func pronoun(n int) string {
	if n > 1 {
		return "them"
	}
	return "it"
}

// Scan lists the top-level directories of root, skipping hidden directories
// and the excluded build output directories. Regular files are ignored.
func Scan(root string, exclude []string) (Inventory, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scan workspace %s: %w", root, err)
	}

	inv := make(Inventory, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") || slices.Contains(exclude, name) {
			continue
		}
		inv[name] = struct{}{}
	}
	return inv, nil
}

// Of builds an Inventory from names.
func Of(names ...string) Inventory {
	inv := make(Inventory, len(names))
	for _, n := range names {
		inv[n] = struct{}{}
	}
	return inv
}

// Names returns the inventory sorted by name.
func (inv Inventory) Names() []string {
	names := maps.Keys(inv)
	slices.Sort(names)
	return names
}

// Reconcile returns a *MismatchError naming every inventory entry missing
// from accounted. Accounted modules that are not in the inventory are not an
// error. catalog is reported as the place to declare the missing modules.
func Reconcile(inv Inventory, accounted map[string]struct{}, catalog string) error {
	var missing []string
	for name := range inv {
		if _, ok := accounted[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return &MismatchError{Modules: missing, Catalog: catalog}
}
