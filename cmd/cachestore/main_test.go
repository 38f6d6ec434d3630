package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/vango-dev/cachestore/internal/errors"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestListExperiments(t *testing.T) {
	var buf bytes.Buffer
	if err := runGallery(context.Background(), &buf, galleryFlags{list: true}, nil); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, id := range []string{"counter", "sharedStoreState", "favoritePosts"} {
		if !strings.Contains(out, id) {
			t.Errorf("list should contain %q:\n%s", id, out)
		}
	}
}

func TestSelectExperiments(t *testing.T) {
	all, err := selectExperiments(nil)
	if err != nil || len(all) != 8 {
		t.Fatalf("selectExperiments(nil) = %d, %v", len(all), err)
	}

	some, err := selectExperiments([]string{"storeDemo", "counter"})
	if err != nil {
		t.Fatal(err)
	}
	if some[0].ID() != "storeDemo" || some[1].ID() != "counter" {
		t.Errorf("order not kept: %s, %s", some[0].ID(), some[1].ID())
	}

	if _, err := selectExperiments([]string{"missing"}); err == nil {
		t.Error("expected error for unknown experiment")
	}
}

func TestRunGallery(t *testing.T) {
	chdir(t, t.TempDir())

	var buf bytes.Buffer
	err := runGallery(context.Background(), &buf, galleryFlags{logLevel: "error"}, []string{"counter", "storeDemo"})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "counter\n") || !strings.Contains(out, "tap decrement (disabled)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRunGalleryInvalidTimeout(t *testing.T) {
	chdir(t, t.TempDir())

	err := runGallery(context.Background(), &bytes.Buffer{}, galleryFlags{timeout: "soon"}, []string{"counter"})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestListCodes(t *testing.T) {
	var buf bytes.Buffer
	if err := listCodes(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(errors.Codes())+1 {
		t.Fatalf("got %d lines, want header plus %d codes:\n%s", len(lines), len(errors.Codes()), buf.String())
	}
	if !strings.HasPrefix(lines[0], "CODE") || !strings.HasPrefix(lines[1], "CS001") {
		t.Errorf("unexpected layout:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Unmapped scope write") {
		t.Errorf("list should include CS010's message:\n%s", buf.String())
	}
}

func TestExplainCode(t *testing.T) {
	errors.SetColor(false)
	defer errors.SetColor(true)

	var buf bytes.Buffer
	if err := explainCode(&buf, "cs002"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "CS002 Type mismatch (access)") || !strings.Contains(buf.String(), "fix:") {
		t.Errorf("unexpected explanation:\n%s", buf.String())
	}

	err := explainCode(&bytes.Buffer{}, "CS999")
	var se *errors.StoreError
	if !stderrors.As(err, &se) || se.Code != "CS122" {
		t.Fatalf("explainCode(CS999) = %v, want CS122", err)
	}
}

func TestCodesCommand(t *testing.T) {
	cmd := codesCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"CS010"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Unmapped scope write") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestBuildStampString(t *testing.T) {
	tests := []struct {
		stamp buildStamp
		want  string
	}{
		{buildStamp{Version: "dev"}, "dev"},
		{buildStamp{Version: "v0.3.0", Commit: "0123456789abcdef"}, "v0.3.0 (0123456789ab)"},
		{buildStamp{Version: "v0.3.0", Commit: "abc", Modified: true}, "v0.3.0 (abc-dirty)"},
	}
	for _, tt := range tests {
		if got := tt.stamp.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestWriteVersion(t *testing.T) {
	b := buildStamp{
		Version:  "v0.3.0",
		Date:     "2026-01-02T03:04:05Z",
		Go:       "go1.24.11",
		Platform: "linux/amd64",
		Deps: []*debug.Module{
			{Path: "github.com/go-chi/chi/v5", Version: "v5.2.3"},
			{Path: "go.opentelemetry.io/otel", Version: "v1.24.0", Replace: &debug.Module{Path: "../otel", Version: ""}},
		},
	}

	var buf bytes.Buffer
	writeVersion(&buf, b, false)
	want := "cachestore v0.3.0\n  built  2026-01-02T03:04:05Z\n  go     go1.24.11 linux/amd64\n"
	if buf.String() != want {
		t.Errorf("writeVersion =\n%q\nwant\n%q", buf.String(), want)
	}

	buf.Reset()
	writeVersion(&buf, b, true)
	for _, line := range []string{
		"  dep    github.com/go-chi/chi/v5 v5.2.3\n",
		"  dep    go.opentelemetry.io/otel v1.24.0 => ../otel \n",
	} {
		if !strings.Contains(buf.String(), line) {
			t.Errorf("--deps output missing %q:\n%s", line, buf.String())
		}
	}
}

func TestLdflagsOverrideBuildInfo(t *testing.T) {
	defer func(v, c string) { version, commit = v, c }(version, commit)
	version, commit = "v9.9.9", "feedface"

	if got := buildVersion().String(); got != "v9.9.9 (feedface)" {
		t.Errorf("buildVersion() = %q", got)
	}
}

func TestTraceFlagNamesGlobalProvider(t *testing.T) {
	f := serveCmd().Flags().Lookup("trace")
	if f == nil || !strings.Contains(f.Usage, "global OpenTelemetry TracerProvider") {
		t.Errorf("--trace help should say where spans go, got %+v", f)
	}
}
