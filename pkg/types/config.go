package types

// DefaultBranch is created at init and can never be removed.
const DefaultBranch = "master"

// Config is the repository config document stored as config.json at the
// repository root. It is always read and written as a whole.
type Config struct {
	ProjectName  string      `json:"project_name,omitempty"`
	Remotes      []Remote    `json:"remotes"`
	Branches     []BranchRef `json:"branches"`
	ActiveBranch string      `json:"active_branch"`
}

// Remote names a remote repository location.
type Remote struct {
	Name string `json:"name" validate:"required,min=1"`
	URL  string `json:"url" validate:"required,url"`
}

// BranchRef is one entry of the config branch list.
type BranchRef struct {
	Name string `json:"name"`
}

// NewConfig returns the document written at repository initialization.
func NewConfig() *Config {
	return &Config{
		Remotes:  []Remote{},
		Branches: []BranchRef{},
	}
}

// BranchNames returns the branch names in config order, skipping entries
// with an empty name.
func (c *Config) BranchNames() []string {
	names := make([]string, 0, len(c.Branches))
	for _, b := range c.Branches {
		if b.Name == "" {
			continue
		}
		names = append(names, b.Name)
	}
	return names
}

// HasBranch reports whether name appears in the branch list.
func (c *Config) HasBranch(name string) bool {
	for _, b := range c.Branches {
		if b.Name == name {
			return true
		}
	}
	return false
}

// AddBranch appends name to the branch list. It does not check uniqueness.
func (c *Config) AddBranch(name string) {
	c.Branches = append(c.Branches, BranchRef{Name: name})
}

// DropBranch removes every entry named name from the branch list.
func (c *Config) DropBranch(name string) {
	kept := make([]BranchRef, 0, len(c.Branches))
	for _, b := range c.Branches {
		if b.Name != name {
			kept = append(kept, b)
		}
	}
	c.Branches = kept
}

// FindRemote returns the first remote named name.
func (c *Config) FindRemote(name string) (Remote, bool) {
	for _, r := range c.Remotes {
		if r.Name == name {
			return r, true
		}
	}
	return Remote{}, false
}

// DropRemote removes the remote named name and reports whether it existed.
func (c *Config) DropRemote(name string) bool {
	kept := make([]Remote, 0, len(c.Remotes))
	found := false
	for _, r := range c.Remotes {
		if r.Name == name {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	c.Remotes = kept
	return found
}
