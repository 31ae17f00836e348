// Package cli wires the cobra command line for repose: a single command
// taking a repository name and optional package targets, matching
// original_source/src/repose.c's getopt_long flag set. repose has never
// had more than one mode of operation to dispatch between, so there are
// no subcommands.
package cli

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/repogen/repose/internal/config"
	"github.com/repogen/repose/internal/driver"
	"github.com/repogen/repose/internal/indexwriter"
	"github.com/repogen/repose/internal/signer"
)

type flags struct {
	root        string
	pool        string
	arch        string
	verbose     bool
	files       bool
	list        bool
	drop        bool
	reflink     bool
	rebuild     bool
	sign        bool
	bzip2       bool
	xz          bool
	gzip        bool
	compress    bool
	keyPath     string
	passphrase  string
}

// NewRootCmd builds the repose command.
func NewRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "repose <database> [pkgs ...]",
		Short: "Build and maintain a pacman repository index",
		Long: `Repose scans a pool of package archives and builds the desc/depends/files
tar index pacman reads as <database>.db and <database>.files, reconciling
it against the pool's contents rather than rebuilding from scratch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}

			if f.list && f.drop {
				return fmt.Errorf("list and drop operations are mutually exclusive")
			}
			if f.rebuild && (f.list || f.drop) {
				logrus.Warn("can't rebuild while performing a list or drop operation; ignoring --rebuild")
				f.rebuild = false
			}

			cfg := config.Config{
				RepoName:       strings.TrimSuffix(args[0], ".db"),
				Root:           f.root,
				Pool:           f.pool,
				Arch:           f.arch,
				Compression:    resolveCompression(f),
				Reflink:        f.reflink,
				Files:          f.files,
				Rebuild:        f.rebuild,
				Sign:           f.sign,
				SignKeyPath:    f.keyPath,
				SignPassphrase: f.passphrase,
				Drop:           f.drop,
				List:           f.list,
				Targets:        args[1:],
				Verbose:        boolToInt(f.verbose),
			}

			var s signer.Signer
			if cfg.Sign {
				gpg, err := signer.NewGPGSigner(cfg.SignKeyPath, cfg.SignPassphrase)
				if err != nil {
					return fmt.Errorf("failed to initialize signer: %w", err)
				}
				s = gpg
			}

			return driver.New(cfg, s).Run()
		},
	}

	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().BoolVarP(&f.files, "files", "f", false, "also build the .files database")
	cmd.Flags().BoolVarP(&f.list, "list", "l", false, "list packages in the repository")
	cmd.Flags().BoolVarP(&f.drop, "drop", "d", false, "drop the specified packages from the db")
	cmd.Flags().StringVarP(&f.root, "root", "r", ".", "set the root for the repository")
	cmd.Flags().StringVarP(&f.pool, "pool", "p", "", "set the pool to find packages in")
	cmd.Flags().StringVarP(&f.arch, "arch", "m", "", "the architecture of the database")
	cmd.Flags().BoolVarP(&f.bzip2, "bzip2", "j", false, "filter the archive through bzip2")
	cmd.Flags().BoolVarP(&f.xz, "xz", "J", false, "filter the archive through xz")
	cmd.Flags().BoolVarP(&f.gzip, "gzip", "z", false, "filter the archive through gzip")
	cmd.Flags().BoolVarP(&f.compress, "compress", "Z", false, "filter the archive through compress")
	cmd.Flags().BoolVar(&f.reflink, "reflink", false, "make repose use reflinks instead of symlinks")
	cmd.Flags().BoolVar(&f.rebuild, "rebuild", false, "force rebuild of the repo")
	cmd.Flags().BoolVarP(&f.sign, "sign", "s", false, "sign the database and verify existing signatures")
	cmd.Flags().StringVarP(&f.keyPath, "gpg-key", "k", "", "path to the OpenPGP private key used for signing")
	cmd.Flags().StringVar(&f.passphrase, "gpg-passphrase", "", "passphrase for the signing key")

	return cmd
}

func resolveCompression(f flags) indexwriter.Compression {
	switch {
	case f.bzip2:
		return indexwriter.Bzip2
	case f.xz:
		return indexwriter.Xz
	case f.gzip:
		return indexwriter.Gzip
	case f.compress:
		return indexwriter.LegacyCompress
	default:
		return indexwriter.Gzip
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
