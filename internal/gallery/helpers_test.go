package gallery

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"testing"
)

func testEnv(t *testing.T) *Env {
	t.Helper()
	env := &Env{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	t.Cleanup(env.Close)
	return env
}

func run(t *testing.T, e Experiment, env *Env) *Report {
	t.Helper()
	report, err := e.Run(context.Background(), env)
	if err != nil {
		t.Fatalf("%s: Run() error: %v", e.ID(), err)
	}
	if report.Experiment != e.ID() {
		t.Errorf("report.Experiment = %q, want %q", report.Experiment, e.ID())
	}
	return report
}

func assertState(t *testing.T, state map[string]any, key string, want any) {
	t.Helper()
	got, ok := state[key]
	if !ok {
		t.Fatalf("state has no %q: %v", key, state)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("state[%q] = %#v, want %#v", key, got, want)
	}
}

func stepNames(r *Report) []string {
	names := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		names[i] = s.Name
	}
	return names
}
