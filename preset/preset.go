// Package preset loads the bank of named patches: the built-in presets
// embedded in the binary plus the user's own presets from the config
// directory.
package preset

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sixop/sixop"
)

//go:embed presets/*
var builtinFS embed.FS

type (
	Preset struct {
		Directory string // e.g. "keys"; empty for presets in the root
		User      bool
		Patch     sixop.Patch
	}

	// Bank is an immutable, sorted list of presets. Built-in presets come
	// before user presets; within each group presets are sorted by directory
	// and name.
	Bank struct {
		Presets []Preset
		Dirs    []string
	}
)

var ErrNotFound = errors.New("preset not found")

// UserDir returns the directory searched for user presets,
// <config dir>/sixop/presets.
func UserDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "sixop", "presets"), nil
}

// Load returns the built-in presets together with the user presets, if the
// user preset directory exists.
func Load() *Bank {
	var fsyss []fs.FS
	if dir, err := UserDir(); err == nil {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			fsyss = append(fsyss, os.DirFS(dir))
		}
	}
	return LoadFS(fsyss...)
}

// Builtin returns only the presets embedded in the binary.
func Builtin() *Bank { return LoadFS() }

// LoadFS returns the built-in presets plus the presets found in each of the
// given file systems, which are all treated as user presets. Files that do
// not parse or do not validate are logged and skipped.
func LoadFS(user ...fs.FS) *Bank {
	b := &Bank{}
	seenDir := make(map[string]bool)
	if sub, err := fs.Sub(builtinFS, "presets"); err == nil {
		b.loadFS(sub, false, seenDir)
	}
	for _, fsys := range user {
		b.loadFS(fsys, true, seenDir)
	}
	sort.SliceStable(b.Presets, func(i, j int) bool {
		p, q := &b.Presets[i], &b.Presets[j]
		if p.User != q.User {
			return !p.User
		}
		if p.Directory != q.Directory {
			return p.Directory < q.Directory
		}
		return p.Patch.Name < q.Patch.Name
	})
	for k := range seenDir {
		b.Dirs = append(b.Dirs, k)
	}
	sort.Strings(b.Dirs)
	return b
}

func (b *Bank) loadFS(fsys fs.FS, user bool, seenDir map[string]bool) {
	fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("preset: %v", err)
			return nil
		}
		if d.IsDir() || (path.Ext(p) != ".yml" && path.Ext(p) != ".yaml") {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			log.Printf("preset: %v", err)
			return nil
		}
		patch, err := Parse(data)
		if err != nil {
			log.Printf("preset: skipping %v: %v", p, err)
			return nil
		}
		dir, file := path.Split(strings.TrimSuffix(p, path.Ext(p)))
		dir = strings.TrimSuffix(dir, "/")
		patch.Name = FilenameToName(file)
		if dir != "" {
			seenDir[dir] = true
		}
		b.Presets = append(b.Presets, Preset{Directory: dir, User: user, Patch: *patch})
		return nil
	})
}

// Parse decodes and validates one preset file. Unknown fields are an error.
func Parse(data []byte) (*sixop.Patch, error) {
	var patch sixop.Patch
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&patch); err != nil {
		return nil, fmt.Errorf("%w: %v", sixop.ErrInvalidPatch, err)
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return &patch, nil
}

// Marshal encodes a patch in the preset file format. The name is not stored;
// it comes from the file name.
func Marshal(p sixop.Patch) ([]byte, error) {
	p.Name = ""
	return yaml.Marshal(&p)
}

// Save writes a patch as a user preset to <UserDir>/<dir>/<name>.yml. A
// patch without a name is saved as Untitled.
func Save(dir string, p sixop.Patch) (string, error) {
	userDir, err := UserDir()
	if err != nil {
		return "", fmt.Errorf("could not locate the user preset directory: %w", err)
	}
	data, err := Marshal(p)
	if err != nil {
		return "", err
	}
	dir = filepath.Join(userDir, filepath.FromSlash(dir))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	name := NameToFilename(p.Name)
	if name == "" {
		name = "Untitled"
	}
	fileName := filepath.Join(dir, name+".yml")
	return fileName, os.WriteFile(fileName, data, 0644)
}

func FilenameToName(filename string) string {
	return strings.ReplaceAll(filename, "_", " ")
}

var unsafeChars = regexp.MustCompile("[^a-zA-Z0-9 ._-]+")

func NameToFilename(name string) string {
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, " ", "_")
}

func (b *Bank) Len() int { return len(b.Presets) }

// Patch returns the patch of preset i. The patch is shared and must not be
// modified.
func (b *Bank) Patch(i int) (*sixop.Patch, bool) {
	if i < 0 || i >= len(b.Presets) {
		return nil, false
	}
	return &b.Presets[i].Patch, true
}

// Find returns the index of the first preset with the given name, compared
// case-insensitively.
func (b *Bank) Find(name string) (int, bool) {
	for i := range b.Presets {
		if strings.EqualFold(b.Presets[i].Patch.Name, name) {
			return i, true
		}
	}
	return -1, false
}

// Get is like Find but returns a copy of the patch, or ErrNotFound.
func (b *Bank) Get(name string) (sixop.Patch, error) {
	i, ok := b.Find(name)
	if !ok {
		return sixop.Patch{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return b.Presets[i].Patch.Copy(), nil
}

// Names lists the preset names in bank order.
func (b *Bank) Names() []string {
	ret := make([]string, len(b.Presets))
	for i := range b.Presets {
		ret[i] = b.Presets[i].Patch.Name
	}
	return ret
}

// InDir returns the indices of the presets in a directory.
func (b *Bank) InDir(dir string) []int {
	var ret []int
	for i := range b.Presets {
		if b.Presets[i].Directory == dir {
			ret = append(ret, i)
		}
	}
	return ret
}
