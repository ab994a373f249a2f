package export

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// GitDestination writes artifacts into a directory of a git repo, commits
// and pushes.
type GitDestination struct {
	repo   string // path to the local clone
	dir    string // directory within the repo
	branch string // branch to commit and push to
}

// NewGitDestination creates a git destination. repo is the path to an
// existing local clone.
func NewGitDestination(repo, dir, branch string) *GitDestination {
	return &GitDestination{
		repo:   repo,
		dir:    dir,
		branch: branch,
	}
}

// Name implements Destination.
func (d *GitDestination) Name() string {
	return "git:" + filepath.Join(d.repo, d.dir) + "@" + d.branch
}

// Write writes the artifacts, then commits and pushes once.
func (d *GitDestination) Write(ctx context.Context, artifacts []Artifact) error {
	// Ensure we're on the right branch.
	if err := d.git(ctx, "checkout", d.branch); err != nil {
		return fmt.Errorf("git checkout: %w", err)
	}

	// Pull latest to minimize conflicts.
	// Ignore errors since the remote might not have the branch yet.
	_ = d.git(ctx, "pull", "--ff-only", "origin", d.branch)

	target := filepath.Join(d.repo, d.dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		if err := os.WriteFile(filepath.Join(target, a.Name), a.Data, 0o644); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
		paths = append(paths, filepath.Join(d.dir, a.Name))
	}

	if err := d.git(ctx, append([]string{"add", "--"}, paths...)...); err != nil {
		return fmt.Errorf("git add: %w", err)
	}

	// Nothing staged means the export is unchanged.
	if err := d.git(ctx, "diff", "--cached", "--quiet"); err == nil {
		return nil
	}

	if err := d.git(ctx, "commit", "-m", "followgraph: update graph export"); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}

	if err := d.git(ctx, "push", "origin", d.branch); err != nil {
		return fmt.Errorf("git push: %w", err)
	}

	return nil
}

func (d *GitDestination) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.repo
	cmd.Stdout = os.Stderr // redirect to stderr so it's visible in logs
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
