// Package repo is the top-level orchestrator: it wires the object store,
// ref store, staging index, working-directory reconciler, and merge engine
// together and implements every operation in the command surface.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"gitshelf/internal/commit"
	"gitshelf/internal/config"
	"gitshelf/internal/content"
	"gitshelf/internal/index"
	"gitshelf/internal/logging"
	"gitshelf/internal/refs"
	"gitshelf/internal/safe"
	"gitshelf/internal/storage"
	"gitshelf/internal/vcserr"
	"gitshelf/internal/workspace"
)

const storeDirName = ".store"

// Repository wires together every component needed to run a command: the
// object store (blobs and commits), the ref store, the staging index, the
// working-directory reconciler, and the commit-message search index.
type Repository struct {
	root     string
	storeDir string

	ws        *workspace.Workspace
	blobs     *safe.Safe
	commits   *content.FileStore
	refStore  *refs.Store
	idx       *index.Index
	commitIdx *storage.CommitIndex
	logger    *zap.Logger
}

func storeLayout(root string) (storeDir, objectsDir, commitsDir, indexPath, metaDir string) {
	storeDir = filepath.Join(root, storeDirName)
	objectsDir = filepath.Join(storeDir, "objects")
	commitsDir = filepath.Join(objectsDir, "commits")
	indexPath = filepath.Join(storeDir, "index")
	metaDir = filepath.Join(storeDir, "metadb")
	return
}

// open wires every component for a repository rooted at root. It does not
// itself decide whether the repository is "initialized" — callers Init or
// Open do that first.
func open(root string) (*Repository, error) {
	storeDir, objectsDir, commitsDir, indexPath, metaDir := storeLayout(root)

	cfg, err := config.Load(filepath.Join(root, "config.json"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	blobContent, err := content.NewFileStore(objectsDir)
	if err != nil {
		return nil, err
	}

	blobs, err := safe.New(blobContent, safe.Options{
		CacheSize: cfg.Compression.CacheSize,
		Compression: safe.Compression{
			Enabled:  cfg.Compression.Enabled,
			MinBytes: cfg.Compression.MinBytes,
			Level:    cfg.Compression.Level,
		},
	})
	if err != nil {
		return nil, err
	}

	commits, err := content.NewFileStore(commitsDir)
	if err != nil {
		return nil, err
	}

	refStore, err := refs.Open(storeDir)
	if err != nil {
		return nil, err
	}

	idx, err := index.Load(indexPath)
	if err != nil {
		return nil, err
	}

	commitIdx, err := storage.Open(metaDir)
	if err != nil {
		return nil, err
	}

	ws := workspace.New(root, log.Logger)

	return &Repository{
		root:      root,
		storeDir:  storeDir,
		ws:        ws,
		blobs:     blobs,
		commits:   commits,
		refStore:  refStore,
		idx:       idx,
		commitIdx: commitIdx,
		logger:    log.Logger,
	}, nil
}

// Open locates the nearest initialized repository at or above root and
// wires up a Repository for it.
func Open(root string) (*Repository, error) {
	found, err := workspace.FindRoot(root, storeDirName)
	if err != nil {
		return nil, vcserr.ErrNotInitialized
	}
	return open(found)
}

// Init creates a fresh repository at root: the store layout, a `main`
// branch, and the initial commit.
func Init(root string) (*Repository, error) {
	storeDir, _, _, _, _ := storeLayout(root)
	if _, err := os.Stat(storeDir); err == nil {
		return nil, vcserr.ErrAlreadyInitialized
	}

	r, err := open(root)
	if err != nil {
		return nil, err
	}

	initial := &commit.Commit{
		Message:   commit.InitialMessage,
		Timestamp: time.Now(),
		BlobMap:   map[string]string{},
	}

	hash, err := r.putCommit(initial)
	if err != nil {
		return nil, err
	}

	if err := r.refStore.CreateBranch("main", hash); err != nil {
		return nil, err
	}
	if err := r.refStore.SetHead("main"); err != nil {
		return nil, err
	}

	r.logger.Info("initialized repository", zap.String("root", root), zap.String("initial_commit", hash))
	return r, nil
}

// Close releases resources (the commit-message index's database handle)
// held by the Repository.
func (r *Repository) Close() error {
	return r.commitIdx.Close()
}

// --- commit.Getter, index.Deps, workspace.BlobGetter implementations ---

// GetCommit implements commit.Getter.
func (r *Repository) GetCommit(hash string) (*commit.Commit, error) {
	data, err := r.commits.Get(hash)
	if err != nil {
		if err == content.ErrNotFound {
			return nil, vcserr.ErrNoSuchCommitID
		}
		return nil, err
	}
	return commit.Deserialize(data)
}

// GetBlob implements workspace.BlobGetter.
func (r *Repository) GetBlob(hash string) ([]byte, error) {
	return r.blobs.Get(hash)
}

// PutBlob implements index.Deps.
func (r *Repository) PutBlob(data []byte) (string, error) {
	return r.blobs.Put(data)
}

// WorkingFileExists implements index.Deps.
func (r *Repository) WorkingFileExists(filename string) bool {
	return r.ws.Exists(filename)
}

// ReadWorkingFile implements index.Deps.
func (r *Repository) ReadWorkingFile(filename string) ([]byte, error) {
	return r.ws.Read(filename)
}

// DeleteWorkingFile implements index.Deps.
func (r *Repository) DeleteWorkingFile(filename string) error {
	return r.ws.Delete(filename)
}

// HeadBlobHash implements index.Deps.
func (r *Repository) HeadBlobHash(filename string) (string, bool) {
	headCommit, _, err := r.headCommit()
	if err != nil {
		return "", false
	}
	return headCommit.BlobHash(filename)
}

// --- internal helpers shared by the command files ---

func (r *Repository) putCommit(c *commit.Commit) (string, error) {
	data, err := commit.Serialize(c)
	if err != nil {
		return "", err
	}

	hash, err := r.commits.Put(data)
	if err != nil {
		return "", err
	}

	if err := r.commitIdx.Add(c.Message, hash); err != nil {
		r.logger.Warn("failed to index commit message", zap.String("hash", hash), zap.Error(err))
	}

	return hash, nil
}

func (r *Repository) saveIndex() error {
	_, _, _, indexPath, _ := storeLayout(r.root)
	return r.idx.Save(indexPath)
}

// headBranch returns the name of the currently active branch.
func (r *Repository) headBranch() (string, error) {
	return r.refStore.ReadHead()
}

// headCommit returns the current branch's head commit object and its hash.
func (r *Repository) headCommit() (*commit.Commit, string, error) {
	branch, err := r.headBranch()
	if err != nil {
		return nil, "", err
	}

	hash, err := r.refStore.ReadBranch(branch)
	if err != nil {
		return nil, "", err
	}

	c, err := r.GetCommit(hash)
	if err != nil {
		return nil, "", err
	}

	return c, hash, nil
}

// resolveID resolves a (possibly abbreviated) commit id by substring
// containment, matching the source VCS's lookup semantics exactly: this is
// not a prefix match.
func (r *Repository) resolveID(id string) (string, error) {
	hashes, err := r.commits.List()
	if err != nil {
		return "", err
	}

	for _, h := range hashes {
		if containsSubstring(h, id) {
			return h, nil
		}
	}
	return "", vcserr.ErrNoSuchCommitID
}

func containsSubstring(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	if len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
