// Command pkgconf is the thin CLI front-end over internal/client and
// internal/resolver: it parses flags, feeds the positional package atoms
// into a synthetic "world" package's Requires list, resolves the graph,
// and renders the requested flag set or query result.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/pkgconf-go/pkgconf/internal/client"
	"github.com/pkgconf-go/pkgconf/internal/dependency"
	"github.com/pkgconf-go/pkgconf/internal/dlist"
	"github.com/pkgconf-go/pkgconf/internal/fragment"
	"github.com/pkgconf-go/pkgconf/internal/pathlist"
	"github.com/pkgconf-go/pkgconf/internal/resolver"
	"github.com/pkgconf-go/pkgconf/internal/variable"
	"github.com/pkgconf-go/pkgconf/internal/version"
)

type depNode = dlist.Node[*dependency.Dependency]

const defaultHelp = `pkgconf is a tool for querying compiler/linker flags for installed packages

Usage:

  pkgconf [options] PACKAGE...

Options:

  --cflags                   output required compiler flags
  --libs                     output required linker flags
  --exists                   check whether PACKAGE(s) are known, exit 1 otherwise
  --atleast-version=VERSION  require PACKAGE's version to be >= VERSION
  --exact-version=VERSION    require PACKAGE's version to be == VERSION
  --max-version=VERSION      require PACKAGE's version to be <= VERSION
  --variable=NAME            print the value of variable NAME and exit
  --define-variable=N=V      override variable N with value V before querying
  --static                   output libs for static linking, folding in private libs
  --ignore-conflicts         do not fail on Conflicts: rule violations
  --print-errors             print errors encountered while resolving
  --silence-errors           suppress error output
  --maximum-traverse-depth=N bound dependency graph recursion (0 = unbounded)
  --env-only                 only consult PKG_CONFIG_PATH, skipping the default path
  --version                  show pkgconf's own version
`

func run(args []string) (int, error) {
	flagSet := pflag.NewFlagSet("pkgconf", pflag.ContinueOnError)
	flagSet.Usage = func() {}

	wantCflags := flagSet.Bool("cflags", false, "")
	wantLibs := flagSet.Bool("libs", false, "")
	wantExists := flagSet.Bool("exists", false, "")
	atleast := flagSet.String("atleast-version", "", "")
	exact := flagSet.String("exact-version", "", "")
	maxVersion := flagSet.String("max-version", "", "")
	variableName := flagSet.String("variable", "", "")
	defines := flagSet.StringArray("define-variable", nil, "")
	static := flagSet.Bool("static", false, "")
	ignoreConflicts := flagSet.Bool("ignore-conflicts", false, "")
	printErrors := flagSet.Bool("print-errors", false, "")
	silenceErrors := flagSet.Bool("silence-errors", false, "")
	maxDepth := flagSet.Int("maximum-traverse-depth", 0, "")
	envOnly := flagSet.Bool("env-only", false, "")
	showVersion := flagSet.Bool("version", false, "")
	showHelp := flagSet.BoolP("help", "h", false, "")

	if err := flagSet.Parse(args[1:]); err == pflag.ErrHelp {
		fmt.Print(defaultHelp)
		return 0, nil
	} else if err != nil {
		return 2, err
	}

	if *showHelp {
		fmt.Print(defaultHelp)
		return 0, nil
	}

	if *showVersion {
		fmt.Println(client.SelfVersion)
		return 0, nil
	}

	var flags client.Flags
	if ignoreConflicts != nil && *ignoreConflicts {
		flags |= client.FlagSkipConflicts
	}
	if envOnly != nil && *envOnly {
		flags |= client.FlagEnvOnly
	}
	if static != nil && *static {
		flags |= client.FlagStatic
	}

	c, err := client.New(pathlist.OS, flags)
	if err != nil {
		return 1, err
	}
	if printErrors != nil && *printErrors {
		c.Output = os.Stderr
	}
	if silenceErrors != nil && *silenceErrors {
		c.ErrorHandler = func(string) bool { return true }
	}

	for _, kv := range *defines {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return 2, fmt.Errorf("pkgconf: --define-variable expects NAME=VALUE, got %q", kv)
		}
		c.Global.Set(name, value, variable.FlagOverride)
	}

	atoms := strings.Join(flagSet.Args(), " ")
	if atoms == "" {
		fmt.Print(defaultHelp)
		return 1, nil
	}

	world := c.World()
	dependency.ParseStr(&world.Requires, atoms, 0)

	depth := -1
	if maxDepth != nil && *maxDepth != 0 {
		depth = *maxDepth
	}

	failed := false
	world.Requires.Each(func(n *depNode) {
		dep := n.Value
		pkg, eflags := resolver.VerifyDependency(c, dep)
		if !eflags.OK() {
			failed = true
			if eflags&resolver.ErrPackageNotFound != 0 {
				c.NotFoundHint(dep.Package)
			}
			c.ReportError("Package %s was not found or version mismatch\n", dep.Package)
			return
		}

		if *atleast != "" && version.Compare(pkg.Version, *atleast) < 0 {
			failed = true
		}
		if *exact != "" && version.Compare(pkg.Version, *exact) != 0 {
			failed = true
		}
		if *maxVersion != "" && version.Compare(pkg.Version, *maxVersion) > 0 {
			failed = true
		}
	})

	if *wantExists {
		if failed {
			return 1, nil
		}
		return 0, nil
	}

	if *variableName != "" {
		var out []string
		world.Requires.Each(func(n *depNode) {
			pkg, eflags := resolver.VerifyDependency(c, n.Value)
			if !eflags.OK() {
				return
			}
			if v, ok := resolver.Variable(c, pkg, *variableName); ok {
				out = append(out, v)
			}
		})
		fmt.Println(strings.Join(out, " "))
		if failed {
			return 1, nil
		}
		return 0, nil
	}

	if eflags := resolver.Traverse(c, world, nil, depth); !eflags.OK() {
		failed = true
	}

	if *wantCflags {
		cflags, err := resolver.CFlags(c, world, depth)
		if err != nil {
			return 1, err
		}
		fmt.Println(fragment.Render(&cflags, fragment.DefaultDelim, nil))
	}

	if *wantLibs {
		libs, err := resolver.Libs(c, world, depth)
		if err != nil {
			return 1, err
		}
		fmt.Println(fragment.Render(&libs, fragment.DefaultDelim, nil))
	}

	if failed {
		return 1, nil
	}
	return 0, nil
}

func main() {
	exitCode, err := run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pkgconf:", err)
	}
	os.Exit(exitCode)
}
