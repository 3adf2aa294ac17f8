package main

import "testing"

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()
	want := []string{
		"validate", "detach-source", "prepare-target", "import", "verify",
		"rollback", "migrate", "status", "runs", "version",
	}
	have := map[string]bool{}
	for _, cmd := range root.Commands() {
		have[cmd.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Fatalf("root command missing subcommand %q", name)
		}
	}
	for _, flag := range []string{"resource", "source-stack", "target-stack", "engine", "map", "journal", "color", "log-level"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Fatalf("root command missing persistent flag --%s", flag)
		}
	}
}

func TestRootCommandFlagDefaults(t *testing.T) {
	root := newRootCommand()
	cases := []struct {
		flag string
		want string
	}{
		{"engine", "aws"},
		{"color", "auto"},
		{"log-level", "info"},
		{"seed-objects", "5"},
	}
	for _, tc := range cases {
		f := root.PersistentFlags().Lookup(tc.flag)
		if f == nil {
			t.Fatalf("missing flag --%s", tc.flag)
		}
		if f.DefValue != tc.want {
			t.Fatalf("--%s default=%q want %q", tc.flag, f.DefValue, tc.want)
		}
	}
}
