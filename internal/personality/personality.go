// Package personality seeds a client's default search path and variable
// overrides from named environment variables, the way the teacher's
// cache.go consults XDG_CACHE_HOME with a getenv-with-fallback idiom
// (spec component H, "client personality").
//
// Grounded on libpkgconf's pkg.c get_pkgconfig_path/pkgconf_pkg_dir_list_build:
// PKG_CONFIG_PATH always takes precedence and is searched first; the
// platform default search path (PKG_CONFIG_LIBDIR, or a built-in fallback
// when that is unset) is appended after it unconditionally, unless the
// caller asks for env-only mode.
package personality

import (
	"github.com/pkgconf-go/pkgconf/internal/pathlist"
)

// DefaultPath is the built-in search path used when PKG_CONFIG_LIBDIR is
// unset, matching pkgconf's PKG_DEFAULT_PATH on non-Windows platforms.
const DefaultPath = "/usr/lib/pkgconfig:/usr/share/pkgconfig"

// Personality bundles the environment-derived defaults a Client applies
// at construction time.
type Personality struct {
	SearchPath  pathlist.List
	Sysroot     string
	Buildroot   string
	TopBuildDir string
}

// Load builds a Personality from the given environment. Pass pathlist.OS
// (or nil) to read the real process environment, or a fake
// in tests. envOnly suppresses the PKG_CONFIG_LIBDIR/default fallback
// path, mirroring PKGCONF_PKG_PKGF_ENV_ONLY.
func Load(env pathlist.Environ, envOnly bool) Personality {
	var p Personality
	if env == nil {
		env = pathlist.OS
	}

	if path, ok := env.Getenv("PKG_CONFIG_PATH"); ok {
		p.SearchPath.AddAll(path, false)
	}

	if !envOnly {
		if libdir, ok := env.Getenv("PKG_CONFIG_LIBDIR"); ok {
			p.SearchPath.AddAll(libdir, false)
		} else {
			p.SearchPath.AddAll(DefaultPath, false)
		}
	}

	if sysroot, ok := env.Getenv("PKG_CONFIG_SYSROOT_DIR"); ok {
		p.Sysroot = sysroot
	}
	if buildroot, ok := env.Getenv("PKG_CONFIG_TOP_BUILD_DIR"); ok {
		p.Buildroot = buildroot
		p.TopBuildDir = buildroot
	}

	return p
}
