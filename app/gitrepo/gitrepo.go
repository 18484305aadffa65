// Package gitrepo is the version-control collaborator: one branch per event,
// one commit per scrape, optional push to origin. It wraps go-git so the run
// does not depend on a git binary or shell out per operation.
package gitrepo

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type Repo struct {
	path string
	repo *git.Repository
}

func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", path, err)
	}
	return &Repo{path: path, repo: repo}, nil
}

// LockPath returns a path under .git suitable for the run's file lock, so the
// lock never shows up in the worktree.
func (r *Repo) LockPath() string {
	return filepath.Join(r.path, ".git", "pyvideo-scrape.lock")
}

// BranchExists reports whether a local branch with the given name exists.
func (r *Repo) BranchExists(name string) (bool, error) {
	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to resolve branch %s: %w", name, err)
}

// Checkout switches the worktree to an existing branch.
func (r *Repo) Checkout(name string) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	err = worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
	})
	if err != nil {
		return fmt.Errorf("failed to checkout %s: %w", name, err)
	}
	return nil
}

// CreateBranch creates a branch at the current HEAD and switches to it.
func (r *Repo) CreateBranch(name string) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	err = worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create branch %s: %w", name, err)
	}
	slog.Debug("Branch created", "branch", name)
	return nil
}

// Add stages a path (file or directory) relative to the repository root.
func (r *Repo) Add(rel string) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	if err := worktree.AddWithOptions(&git.AddOptions{Path: rel}); err != nil {
		return fmt.Errorf("failed to stage %s: %w", rel, err)
	}
	return nil
}

// Commit records the staged changes. The author is taken from the git
// configuration when present.
func (r *Repo) Commit(message string) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: r.signature(),
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Push publishes a branch to origin. An already up-to-date remote is not an
// error.
func (r *Repo) Push(branch string) error {
	refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err := r.repo.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{refSpec},
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to push %s: %w", branch, err)
	}
	return nil
}

func (r *Repo) signature() *object.Signature {
	sig := &object.Signature{
		Name:  "pyvideo-scrape",
		Email: "pyvideo-scrape@localhost",
		When:  time.Now(),
	}
	cfg, err := r.repo.ConfigScoped(gitconfig.SystemScope)
	if err != nil {
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}
