package main

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/turtletowerz/phash"
	"github.com/turtletowerz/phash/luma"
)

func isImage(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff":
		return true
	default:
		return false
	}
}

// Walks through a directory and all subdirectories, returning every image it
// finds in lexical order. Hidden and unreadable directories are skipped.
func collectImages(dir string) ([]string, error) {
	return walkImages(os.DirFS(dir), dir)
}

func walkImages(fsys fs.FS, dir string) ([]string, error) {
	var paths []string

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == "." {
				return err
			}

			log.WithError(err).WithField("path", path).Warn("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}

		if isImage(path) {
			paths = append(paths, filepath.Join(dir, filepath.FromSlash(path)))
		}
		return nil
	})

	return paths, errors.Wrapf(err, "walking %s", dir)
}

type fileHash struct {
	Path   string     `json:"path"`
	Hash   phash.Hash `json:"hash"`
	Digest uint64     `json:"-"` // xxHash64 of the file contents
	Err    error      `json:"-"`
}

func hashFile(h *phash.Hasher, l *luma.Loader, path string) (fileHash, error) {
	f := fileHash{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return f, errors.Wrap(err, "reading image")
	}
	f.Digest = xxhash.Sum64(data)

	b, err := l.Decode(bytes.NewReader(data))
	if err != nil {
		return f, errors.Wrapf(err, "decoding %s", path)
	}

	if f.Hash, err = h.Hash(b.Pix, b.Width, b.Height); err != nil {
		return f, errors.Wrapf(err, "hashing %s", path)
	}
	return f, nil
}

// Hashes every path with at most workers files in flight. Results keep the
// order of paths; failures are recorded in Err and logged.
func hashFiles(paths []string, workers int, l *luma.Loader) []fileHash {
	if workers <= 0 {
		workers = 1
	}

	h := phash.New()
	results := make([]fileHash, len(paths))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, p := range paths {
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			r, err := hashFile(h, l, path)
			if err != nil {
				log.WithError(err).Warn("skipping file")
				r.Err = err
			} else {
				log.WithField("path", path).Debugf("hashed %s", r.Hash)
			}
			results[idx] = r
		}(i, p)
	}
	wg.Wait()

	return results
}

// Groups files with byte-identical contents. Only groups of two or more are returned.
func exactDuplicates(files []fileHash) [][]string {
	byDigest := make(map[uint64][]string)
	var order []uint64

	for _, f := range files {
		if f.Err != nil {
			continue
		}
		if _, ok := byDigest[f.Digest]; !ok {
			order = append(order, f.Digest)
		}
		byDigest[f.Digest] = append(byDigest[f.Digest], f.Path)
	}

	var groups [][]string
	for _, d := range order {
		if len(byDigest[d]) > 1 {
			groups = append(groups, byDigest[d])
		}
	}
	return groups
}

type similarPair struct {
	A        string `json:"a"`
	B        string `json:"b"`
	Distance int    `json:"distance"`
}

// O(n^2) comparison of every pair of distinct files, keeping the first file of
// each exact duplicate group. Sorted by distance, then by path.
func similarPairs(files []fileHash, threshold int) []similarPair {
	var unique []fileHash
	seen := make(map[uint64]bool)
	for _, f := range files {
		if f.Err != nil || seen[f.Digest] {
			continue
		}
		seen[f.Digest] = true
		unique = append(unique, f)
	}

	var pairs []similarPair
	for i, a := range unique {
		for _, b := range unique[i+1:] {
			if d := a.Hash.Distance(b.Hash); d <= threshold {
				pairs = append(pairs, similarPair{A: a.Path, B: b.Path, Distance: d})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Distance == pairs[j].Distance {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].Distance < pairs[j].Distance
	})
	return pairs
}
