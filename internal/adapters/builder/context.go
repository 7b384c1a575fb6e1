package builder

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/moby/patternmatcher"
	"github.com/moby/patternmatcher/ignorefile"
)

const ignoreFileName = ".dockerignore"

// copyTree copies the build context verbatim: every regular file and
// directory under src ends up under dst with permissions preserved.
// Symlinks and other irregular files are skipped.
func copyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("build context %s is not a directory", src)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			if rel == "." {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			return nil
		}
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// readIgnorePatterns loads .dockerignore patterns from the staged context.
// A missing ignore file means no exclusions.
func readIgnorePatterns(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, ignoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", ignoreFileName, err)
	}
	defer f.Close()

	patterns, err := ignorefile.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ignoreFileName, err)
	}
	return patterns, nil
}

// entrypointMissing reports whether the context-relative file the startup
// command names will be absent from the image: either not present in the
// staged context at all, or excluded by the ignore patterns.
func entrypointMissing(dir, file string) (bool, error) {
	if _, err := os.Stat(filepath.Join(dir, file)); err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}

	patterns, err := readIgnorePatterns(dir)
	if err != nil || len(patterns) == 0 {
		return false, err
	}
	matcher, err := patternmatcher.New(patterns)
	if err != nil {
		return false, fmt.Errorf("invalid %s patterns: %w", ignoreFileName, err)
	}
	excluded, err := matcher.MatchesOrParentMatches(file)
	if err != nil {
		return false, err
	}
	return excluded, nil
}
