package types

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
)

func TestConfigBranchNames(t *testing.T) {
	cfg := Config{Branches: []BranchRef{{Name: "master"}, {Name: ""}, {Name: "exp-1"}}}

	got := cfg.BranchNames()
	want := []string{"master", "exp-1"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestConfigAddDropBranch(t *testing.T) {
	cfg := NewConfig()
	cfg.AddBranch("master")
	cfg.AddBranch("dev")

	if !cfg.HasBranch("dev") {
		t.Fatal("expected dev to be present")
	}
	cfg.DropBranch("dev")
	if cfg.HasBranch("dev") {
		t.Fatal("expected dev to be removed")
	}
	if !cfg.HasBranch("master") {
		t.Fatal("expected master to survive")
	}
}

func TestConfigRemotes(t *testing.T) {
	cfg := NewConfig()
	cfg.Remotes = append(cfg.Remotes, Remote{Name: "origin", URL: "https://example.com/a"})

	r, ok := cfg.FindRemote("origin")
	if !ok || r.URL != "https://example.com/a" {
		t.Fatalf("expected origin remote, got %+v (found=%v)", r, ok)
	}
	if _, ok := cfg.FindRemote("upstream"); ok {
		t.Fatal("expected upstream to be absent")
	}
	if !cfg.DropRemote("origin") {
		t.Fatal("expected DropRemote to report removal")
	}
	if cfg.DropRemote("origin") {
		t.Fatal("expected second DropRemote to report nothing removed")
	}
}

func TestNewConfigJSON(t *testing.T) {
	data, err := json.Marshal(NewConfig())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"remotes":[],"branches":[],"active_branch":""}`
	if string(data) != want {
		t.Fatalf("expected %s, got %s", want, data)
	}
}

func TestRemoteValidate(t *testing.T) {
	tests := []struct {
		name    string
		remote  Remote
		wantErr error
	}{
		{name: "valid https remote", remote: Remote{Name: "origin", URL: "https://example.com/repo"}},
		{name: "missing name", remote: Remote{URL: "https://example.com/repo"}, wantErr: ErrInvalidRemote},
		{name: "missing url", remote: Remote{Name: "origin"}, wantErr: ErrInvalidRemote},
		{name: "malformed url", remote: Remote{Name: "origin", URL: "not a url"}, wantErr: ErrInvalidRemote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.remote.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
