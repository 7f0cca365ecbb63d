/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package changes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	utildiff "github.com/go-git/go-git/v5/utils/diff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// gitDiffer compares the working tree against the index, like `git diff`.
type gitDiffer struct {
	repo *gogit.Repository
	wt   *gogit.Worktree
	root string

	// idx is the index read by the last Changed, shared by every Diff.
	idx *index.Index
}

var _ Differ = (*gitDiffer)(nil)

// OpenRepository opens the git working copy containing root.
func OpenRepository(root string) (Differ, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotVersionControlled, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotVersionControlled, root)
	}

	repo, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotVersionControlled, root)
		}
		return nil, fmt.Errorf("opening repository at %s: %w", root, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no working copy to diff.
		return nil, fmt.Errorf("%w: %s: %w", ErrNotVersionControlled, root, err)
	}

	return &gitDiffer{
		repo: repo,
		wt:   wt,
		root: wt.Filesystem.Root(),
	}, nil
}

// Changed implements Differ.
func (g *gitDiffer) Changed(_ context.Context) ([]string, error) {
	status, err := g.wt.Status()
	if err != nil {
		return nil, err
	}
	if g.idx, err = g.repo.Storer.Index(); err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}

	paths := make([]string, 0, len(status))
	for path, st := range status {
		switch st.Worktree {
		case gogit.Modified, gogit.Deleted:
			paths = append(paths, path)
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// Diff implements Differ.
func (g *gitDiffer) Diff(_ context.Context, path string) (string, error) {
	from, fromContent, err := g.indexSide(path)
	if err != nil {
		return "", err
	}
	to, toContent, err := g.worktreeSide(path)
	if err != nil {
		return "", err
	}
	if from == nil && to == nil {
		return "", nil
	}
	if from != nil && to != nil && bytes.Equal(fromContent, toContent) {
		return "", nil
	}

	fp := &filePatch{
		binary: isBinary(fromContent) || isBinary(toContent),
	}
	// Keep the interface values nil for absent sides so the encoder
	// renders new and deleted file headers.
	if from != nil {
		fp.from = from
	}
	if to != nil {
		fp.to = to
	}
	if !fp.binary {
		fp.chunks = toChunks(utildiff.Do(string(fromContent), string(toContent)))
	}

	var buf bytes.Buffer
	if err := fdiff.NewUnifiedEncoder(&buf, fdiff.DefaultContextLines).Encode(patch{fp}); err != nil {
		return "", fmt.Errorf("encoding diff: %w", err)
	}
	return buf.String(), nil
}

func (g *gitDiffer) index() (*index.Index, error) {
	if g.idx == nil {
		idx, err := g.repo.Storer.Index()
		if err != nil {
			return nil, fmt.Errorf("reading index: %w", err)
		}
		g.idx = idx
	}
	return g.idx, nil
}

func (g *gitDiffer) indexSide(path string) (*patchFile, []byte, error) {
	idx, err := g.index()
	if err != nil {
		return nil, nil, err
	}
	entry, err := idx.Entry(path)
	if errors.Is(err, index.ErrEntryNotFound) {
		return nil, nil, nil
	} else if err != nil {
		return nil, nil, err
	}

	blob, err := g.repo.BlobObject(entry.Hash)
	if err != nil {
		return nil, nil, fmt.Errorf("reading blob for %s: %w", path, err)
	}
	r, err := blob.Reader()
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	return &patchFile{hash: entry.Hash, mode: entry.Mode, path: path}, content, nil
}

func (g *gitDiffer) worktreeSide(path string) (*patchFile, []byte, error) {
	full := filepath.Join(g.root, filepath.FromSlash(path))
	info, err := os.Lstat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	} else if err != nil {
		return nil, nil, err
	}

	var content []byte
	mode := filemode.Regular
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(full)
		if err != nil {
			return nil, nil, err
		}
		content = []byte(target)
		mode = filemode.Symlink
	default:
		if content, err = os.ReadFile(full); err != nil {
			return nil, nil, err
		}
		if info.Mode()&0o111 != 0 {
			mode = filemode.Executable
		}
	}

	return &patchFile{
		hash: plumbing.ComputeHash(plumbing.BlobObject, content),
		mode: mode,
		path: path,
	}, content, nil
}

func isBinary(content []byte) bool {
	return bytes.IndexByte(content, 0) >= 0
}

func toChunks(diffs []diffmatchpatch.Diff) []fdiff.Chunk {
	chunks := make([]fdiff.Chunk, 0, len(diffs))
	for _, d := range diffs {
		op := fdiff.Equal
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = fdiff.Add
		case diffmatchpatch.DiffDelete:
			op = fdiff.Delete
		}
		chunks = append(chunks, chunk{content: d.Text, op: op})
	}
	return chunks
}

// The types below satisfy go-git's diff encoder interfaces.

type patch []fdiff.FilePatch

func (p patch) FilePatches() []fdiff.FilePatch { return p }
func (p patch) Message() string { return "" }

type filePatch struct {
	from, to fdiff.File
	chunks   []fdiff.Chunk
	binary   bool
}

func (f *filePatch) IsBinary() bool { return f.binary }
func (f *filePatch) Files() (fdiff.File, fdiff.File) { return f.from, f.to }
func (f *filePatch) Chunks() []fdiff.Chunk { return f.chunks }

type patchFile struct {
	hash plumbing.Hash
	mode filemode.FileMode
	path string
}

func (f *patchFile) Hash() plumbing.Hash { return f.hash }
func (f *patchFile) Mode() filemode.FileMode { return f.mode }
func (f *patchFile) Path() string { return f.path }

type chunk struct {
	content string
	op      fdiff.Operation
}

func (c chunk) Content() string { return c.content }
func (c chunk) Type() fdiff.Operation { return c.op }
