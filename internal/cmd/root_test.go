package cmd

import (
	"testing"
)

// TestCommandsRegistered tests that every top-level command is on the root
func TestCommandsRegistered(t *testing.T) {
	want := []string{"auth", "members", "dashboard", "payments", "reports", "console", "doctor", "config", "version"}

	registered := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Errorf("command '%s' not registered on root", name)
		}
	}
}

func TestPersistentFlags(t *testing.T) {
	for _, name := range []string{"api-url", "log-level", "output", "config"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag '%s' not found", name)
		}
	}

	if f := rootCmd.PersistentFlags().ShorthandLookup("o"); f == nil || f.Name != "output" {
		t.Error("shorthand -o should map to --output")
	}
}

func TestSubcommands(t *testing.T) {
	tests := []struct {
		parent string
		want   []string
	}{
		{parent: "auth", want: []string{"login", "logout", "status"}},
		{parent: "members", want: []string{"list", "show", "create", "update", "delete", "stats"}},
		{parent: "config", want: []string{"view", "path"}},
	}

	for _, tt := range tests {
		t.Run(tt.parent, func(t *testing.T) {
			parent, _, err := rootCmd.Find([]string{tt.parent})
			if err != nil {
				t.Fatalf("Find(%s) error = %v", tt.parent, err)
			}
			for _, name := range tt.want {
				found := false
				for _, c := range parent.Commands() {
					if c.Name() == name {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("subcommand '%s' not found in %s", name, tt.parent)
				}
			}
		})
	}
}

func TestWhoamiAlias(t *testing.T) {
	c, _, err := rootCmd.Find([]string{"auth", "whoami"})
	if err != nil {
		t.Fatalf("Find(auth whoami) error = %v", err)
	}
	if c.Name() != "status" {
		t.Errorf("whoami resolves to %q, want status", c.Name())
	}
}

func TestAuthLoginFlags(t *testing.T) {
	for _, name := range []string{"email", "password", "force"} {
		if authLoginCmd.Flags().Lookup(name) == nil {
			t.Errorf("flag '%s' not found on auth login command", name)
		}
	}
}
