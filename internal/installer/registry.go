package installer

import "sort"

// Registry holds the installers of one build. The native library and toolchain have
// named slots so the pipeline can reach them without inspecting the installer list.
type Registry struct {
	native    NativeLibrary
	toolchain Toolchain
	extras    []Installer
}

// NewRegistry builds a registry. native and toolchain may be nil.
func NewRegistry(native NativeLibrary, toolchain Toolchain, extras ...Installer) *Registry {
	return &Registry{native: native, toolchain: toolchain, extras: extras}
}

// Native returns the native library installer, or nil.
func (r *Registry) Native() NativeLibrary {
	return r.native
}

// Toolchain returns the toolchain installer, or nil.
func (r *Registry) Toolchain() Toolchain {
	return r.toolchain
}

// Ordered returns all installers by ascending install order. Installers with equal
// order keep their declaration order: native, toolchain, then extras.
func (r *Registry) Ordered() []Installer {
	all := make([]Installer, 0, len(r.extras)+2)
	if r.native != nil {
		all = append(all, r.native)
	}
	if r.toolchain != nil {
		all = append(all, r.toolchain)
	}
	for _, i := range r.extras {
		if i != nil {
			all = append(all, i)
		}
	}
	sort.SliceStable(all, func(a, b int) bool {
		return all[a].InstallOrder() < all[b].InstallOrder()
	})
	return all
}

// StagingPaths returns the non-empty PathInStaging of every installer, in install order.
func (r *Registry) StagingPaths() []string {
	var paths []string
	for _, i := range r.Ordered() {
		if p := i.PathInStaging(); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// RuntimeCacheDirs returns the cache keys of runtime-required installers.
func (r *Registry) RuntimeCacheDirs() []string {
	var dirs []string
	for _, i := range r.Ordered() {
		if i.InRuntime() && i.CacheDir() != "" {
			dirs = append(dirs, i.CacheDir())
		}
	}
	return dirs
}
