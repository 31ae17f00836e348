// Package driver implements the Driver component: it sequences the
// load -> reduce -> update -> write -> link pipeline (or the drop/list
// shortcuts) that every repose invocation runs through. Grounded on
// original_source/src/repose.c's main(): init_repo/load_manifest/
// drop_from_repo/reduce_repo/update_repo/write_database/link_db.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/repogen/repose/internal/config"
	"github.com/repogen/repose/internal/indexwriter"
	"github.com/repogen/repose/internal/linker"
	"github.com/repogen/repose/internal/pkgcache"
	"github.com/repogen/repose/internal/pkgmeta"
	"github.com/repogen/repose/internal/reconciler"
	"github.com/repogen/repose/internal/scanner"
	"github.com/repogen/repose/internal/signer"
)

// Driver runs one repose invocation against a resolved Config.
type Driver struct {
	Config config.Config
	Signer signer.Signer
}

// New builds a Driver, filling in Config.Arch from the host architecture
// when the caller didn't set one explicitly.
func New(cfg config.Config, s signer.Signer) *Driver {
	if cfg.Arch == "" {
		cfg.Arch = defaultArch()
	}
	return &Driver{Config: cfg, Signer: s}
}

// defaultArch approximates uname(2)'s machine field using Go's own
// architecture name. It won't match pacman's usual x86_64/aarch64 spelling
// on every platform; callers that care should pass --arch explicitly.
func defaultArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	default:
		return runtime.GOARCH
	}
}

// Run executes the configured operation: List, Drop, or the default
// scan/reconcile/write/link pipeline.
func (d *Driver) Run() error {
	cfg := d.Config

	repo, err := d.openRepo()
	if err != nil {
		return err
	}

	if cfg.List {
		listRepo(repo)
		return nil
	}

	targets := cfg.Targets
	if cfg.Drop {
		reconciler.Drop(repo, targets)
	} else {
		if len(targets) == 0 {
			manifestTargets, err := loadManifest(cfg.Root, cfg.ManifestName())
			if err != nil {
				return pkgmeta.Fatalf(cfg.ManifestName(), err)
			}
			targets = manifestTargets
		}

		filecache, err := scanner.Load(cfg.PoolDir(), scanner.Options{
			Targets: targets,
			Arch:    cfg.Arch,
		})
		if err != nil {
			return err
		}

		reconciler.Reduce(repo)
		reconciler.Update(repo, filecache)
	}

	if !repo.Dirty {
		logrus.Debug("repo does not need updating")
		return nil
	}

	if err := d.writeIndexes(repo); err != nil {
		return err
	}

	return linker.LinkAll(repo.Cache, linker.Options{
		PoolDir: cfg.PoolDir(),
		RootDir: cfg.Root,
		Reflink: cfg.Reflink,
	})
}

// openRepo loads the existing .db/.files index (unless Rebuild is set, in
// which case the repo starts from an empty cache) and, if signing is
// configured, verifies any signature the index already carries before this
// run potentially replaces it.
func (d *Driver) openRepo() (*reconciler.Repo, error) {
	cfg := d.Config
	repo := &reconciler.Repo{
		PoolDir: cfg.PoolDir(),
		RootDir: cfg.Root,
	}

	if cfg.Rebuild {
		repo.Cache = pkgcache.New(100)
		return repo, nil
	}

	dbPath := filepath.Join(cfg.Root, cfg.DBName())
	if cfg.Sign {
		if err := d.verifyExisting(dbPath); err != nil {
			return nil, err
		}
	}

	cache, err := indexwriter.LoadIndex(dbPath, cfg.Compression)
	if err != nil {
		if !pkgmeta.IsNotFound(err) {
			return nil, err
		}
		cache = pkgcache.New(100)
	}
	repo.Cache = cache

	if cfg.Files {
		filesPath := filepath.Join(cfg.Root, cfg.FilesName())
		if cfg.Sign {
			if err := d.verifyExisting(filesPath); err != nil {
				return nil, err
			}
		}
		filesCache, err := indexwriter.LoadIndex(filesPath, cfg.Compression)
		if err != nil && !pkgmeta.IsNotFound(err) {
			return nil, err
		}
		mergeFiles(repo.Cache, filesCache)
	}

	return repo, nil
}

// mergeFiles copies the Files field from the .files index's entries onto
// the matching packages already loaded from the .db index.
func mergeFiles(dst, src *pkgcache.Cache) {
	if src == nil {
		return
	}
	for _, pkg := range src.List() {
		if target := dst.Find(pkg.Name); target != nil {
			target.Files = pkg.Files
		}
	}
}

// verifyExisting checks dbPath's existing .sig, if any, against d.Signer,
// mirroring check_signature in repose.c, which refuses to resign a
// repository whose current signature doesn't verify.
func (d *Driver) verifyExisting(dbPath string) error {
	sigPath := dbPath + ".sig"
	if _, err := os.Stat(sigPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return pkgmeta.Fatalf(sigPath, err)
	}
	if d.Signer == nil {
		return nil
	}
	if err := d.Signer.VerifyDetachedBinaryFromFile(dbPath, sigPath); err != nil {
		return pkgmeta.Fatalf(dbPath, fmt.Errorf("existing repo signature is invalid or corrupt: %w", err))
	}
	return nil
}

func listRepo(repo *reconciler.Repo) {
	for _, pkg := range repo.Cache.List() {
		fmt.Printf("%s %s\n", pkg.Name, pkg.Version)
	}
}

// writeIndexes writes the .db (and, if configured, .files) index, followed
// by their detached signatures when signing is enabled.
func (d *Driver) writeIndexes(repo *reconciler.Repo) error {
	cfg := d.Config

	dbPath := filepath.Join(cfg.Root, cfg.DBName())
	if err := d.writeOne(dbPath, repo.Cache, indexwriter.DBContents); err != nil {
		return err
	}

	if cfg.Files {
		filesPath := filepath.Join(cfg.Root, cfg.FilesName())
		if err := d.writeOne(filesPath, repo.Cache, indexwriter.FilesContents); err != nil {
			return err
		}
	}

	return nil
}

func (d *Driver) writeOne(path string, cache *pkgcache.Cache, contents indexwriter.Contents) error {
	cfg := d.Config

	var s indexwriter.Signer
	if cfg.Sign && d.Signer != nil {
		s = d.Signer
	}

	tarPath := path + ".tar" + cfg.Compression.Ext()
	if err := indexwriter.WriteIndex(tarPath, cache, indexwriter.Options{
		PoolDir:     cfg.PoolDir(),
		Compression: cfg.Compression,
		Contents:    contents,
		Signer:      s,
	}); err != nil {
		return err
	}

	if err := relinkIndexSymlink(path, tarPath); err != nil {
		return err
	}

	if cfg.Sign && d.Signer != nil {
		sig, err := d.Signer.SignDetachedBinaryFromFile(tarPath)
		if err != nil {
			return pkgmeta.Fatalf(tarPath, err)
		}
		if err := os.WriteFile(path+".sig", sig, 0644); err != nil {
			return pkgmeta.Fatalf(path+".sig", err)
		}
	}

	return nil
}

// relinkIndexSymlink points the bare "<repo>.db"/"<repo>.files" name at the
// real, compression-suffixed tar archive, replacing any stale symlink from
// a prior run that used a different compression.
func relinkIndexSymlink(linkPath, targetPath string) error {
	os.Remove(linkPath)
	return os.Symlink(filepath.Base(targetPath), linkPath)
}
