package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// buildStamp identifies the running binary. Values come from the module
// build info embedded by the go tool; the ldflags variables in main.go take
// precedence when set.
type buildStamp struct {
	Version  string
	Commit   string
	Date     string
	Modified bool
	Go       string
	Platform string
	Deps     []*debug.Module
}

func buildVersion() buildStamp {
	b := buildStamp{
		Version:  "dev",
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			b.Version = v
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				b.Commit = s.Value
			case "vcs.time":
				b.Date = s.Value
			case "vcs.modified":
				b.Modified = s.Value == "true"
			}
		}
		b.Deps = bi.Deps
	}
	if version != "" {
		b.Version = version
	}
	if commit != "" {
		b.Commit = commit
	}
	if date != "" {
		b.Date = date
	}
	return b
}

// String is the one-line form used by --version.
func (b buildStamp) String() string {
	if b.Commit == "" {
		return b.Version
	}
	rev := b.Commit
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if b.Modified {
		rev += "-dirty"
	}
	return b.Version + " (" + rev + ")"
}

func writeVersion(w io.Writer, b buildStamp, deps bool) {
	fmt.Fprintf(w, "cachestore %s\n", b)
	if b.Date != "" {
		fmt.Fprintf(w, "  built  %s\n", b.Date)
	}
	fmt.Fprintf(w, "  go     %s %s\n", b.Go, b.Platform)
	if !deps {
		return
	}
	for _, m := range b.Deps {
		if r := m.Replace; r != nil {
			fmt.Fprintf(w, "  dep    %s %s => %s %s\n", m.Path, m.Version, r.Path, r.Version)
			continue
		}
		fmt.Fprintf(w, "  dep    %s %s\n", m.Path, m.Version)
	}
}

func versionCmd() *cobra.Command {
	var deps bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, VCS revision and Go toolchain of this binary.

With --deps the module versions compiled in are listed as well,
e.g. to check which OpenTelemetry or Prometheus client is in use.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			writeVersion(cmd.OutOrStdout(), buildVersion(), deps)
		},
	}

	cmd.Flags().BoolVar(&deps, "deps", false, "Also list module dependencies")

	return cmd
}
