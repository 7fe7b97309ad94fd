// Package config reads the global seedicon configuration and seed files.
package config

import (
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-errors/errors"
)

const (
	// RootEnv overrides the data root.
	RootEnv = "SEEDICON_ROOT"

	fileName     = "seedicon.toml"
	seedExt      = ".toml"
	protonUser   = "steamuser"
	applications = "seedicon"
)

var (
	// ErrInvalidSeed is returned for seed files without exactly one of the
	// [wine] and [proton] tables.
	ErrInvalidSeed = errors.Errorf("seed must configure exactly one of wine or proton")
	// ErrNoApp is returned when a seed has no application with a name.
	ErrNoApp = errors.Errorf("seed has no such application")
	// ErrNoHome is returned when no data directory can be determined.
	ErrNoHome = errors.Errorf("no home directory")
)

// Dirs locates the data directories.
type Dirs struct {
	// Root holds seeds, prefixes, icons and the configuration file.
	Root string
	// Data is the XDG data home that desktop entries are installed into.
	Data string
}

// DefaultDirs resolves the data directories from the environment:
// $SEEDICON_ROOT, then $XDG_DATA_HOME/seedicon, then
// ~/.local/share/seedicon.
func DefaultDirs() (Dirs, error) {
	data := os.Getenv("XDG_DATA_HOME")
	if data == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return Dirs{}, errors.New(ErrNoHome)
		}
		data = filepath.Join(home, ".local", "share")
	}

	root := os.Getenv(RootEnv)
	if root == "" {
		root = filepath.Join(data, "seedicon")
	}
	return Dirs{Root: root, Data: data}, nil
}

// Seeds is the directory of seed files.
func (d Dirs) Seeds() string { return filepath.Join(d.Root, "seeds") }

// Icons is the directory extracted icons are written to.
func (d Dirs) Icons() string { return filepath.Join(d.Root, "icons") }

// Prefixes is the default location of prefixes.
func (d Dirs) Prefixes() string { return filepath.Join(d.Root, "prefixes") }

// Applications is the directory desktop entries are written to.
func (d Dirs) Applications() string { return filepath.Join(d.Data, "applications", applications) }

// File is the global configuration file.
func (d Dirs) File() string { return filepath.Join(d.Root, fileName) }

// Create makes every directory that is written to.
func (d Dirs) Create() error {
	for _, dir := range []string{d.Seeds(), d.Icons(), d.Prefixes(), d.Applications()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapPrefix(err, "creating data directories", 0)
		}
	}
	return nil
}

// Wine is the [wine] table of the configuration file.
type Wine struct {
	PrefixLocation string `toml:"wine_prefix_location"`
	DefaultPrefix  string `toml:"default_wine_prefix"`
	DefaultRuntime string `toml:"default_wine_runtime"`
}

// Proton is the [proton] table of the configuration file.
type Proton struct {
	PrefixLocation string `toml:"proton_prefix_location"`
	DefaultPrefix  string `toml:"default_proton_prefix"`
	DefaultRuntime string `toml:"default_proton_runtime"`
}

// Config is the global configuration.
type Config struct {
	Wine   Wine   `toml:"wine"`
	Proton Proton `toml:"proton"`

	dirs Dirs
}

// Default returns the configuration used when no file overrides it.
func Default(dirs Dirs) *Config {
	return &Config{
		Wine: Wine{
			PrefixLocation: dirs.Prefixes(),
			DefaultPrefix:  filepath.Join(dirs.Prefixes(), "default"),
		},
		Proton: Proton{
			PrefixLocation: dirs.Prefixes(),
			DefaultPrefix:  filepath.Join(dirs.Prefixes(), "proton"),
		},
		dirs: dirs,
	}
}

// Load layers the configuration file over the defaults. A missing file is
// not an error.
func Load(dirs Dirs) (*Config, error) {
	cfg := Default(dirs)

	metadata, err := toml.DecodeFile(dirs.File(), cfg)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.WrapPrefix(err, "loading "+fileName, 0)
	}
	for _, key := range metadata.Undecoded() {
		slog.Debug("seedicon: unknown configuration key", "key", key.String())
	}
	return cfg, nil
}

// Dirs returns the directories the configuration was loaded from.
func (c *Config) Dirs() Dirs {
	return c.dirs
}

// App is an application of a seed.
type App struct {
	Name      string `toml:"application_name"`
	Location  string `toml:"application_location"`
	Category  string `toml:"category,omitempty"`
	Arguments string `toml:"arguments,omitempty"`
}

// WineSeed is the [wine] table of a seed.
type WineSeed struct {
	Prefix  string `toml:"wine_prefix,omitempty"`
	Runtime string `toml:"wine_runtime,omitempty"`
}

// ProtonSeed is the [proton] table of a seed.
type ProtonSeed struct {
	Prefix  string `toml:"proton_prefix,omitempty"`
	Runtime string `toml:"proton_runtime,omitempty"`
	GameID  string `toml:"game_id,omitempty"`
	Store   string `toml:"store,omitempty"`
}

// Seed is a prefix and the applications installed into it.
type Seed struct {
	Name   string      `toml:"-"`
	Apps   []App       `toml:"apps"`
	Wine   *WineSeed   `toml:"wine,omitempty"`
	Proton *ProtonSeed `toml:"proton,omitempty"`
}

// LoadSeed reads the seed file at path. The seed is named after the file.
func LoadSeed(path string) (*Seed, error) {
	seed := &Seed{}
	if _, err := toml.DecodeFile(path, seed); err != nil {
		return nil, errors.WrapPrefix(err, "loading seed", 0)
	}
	if (seed.Wine == nil) == (seed.Proton == nil) {
		slog.Debug("seedicon: invalid seed", "path", path)
		return nil, errors.New(ErrInvalidSeed)
	}
	seed.Name = strings.TrimSuffix(filepath.Base(path), seedExt)
	return seed, nil
}

// Seed loads the seed called name.
func (c *Config) Seed(name string) (*Seed, error) {
	return LoadSeed(filepath.Join(c.dirs.Seeds(), name+seedExt))
}

// Seeds loads every seed, sorted by name. Seeds that fail to load are
// logged and skipped.
func (c *Config) Seeds() ([]*Seed, error) {
	entries, err := os.ReadDir(c.dirs.Seeds())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapPrefix(err, "listing seeds", 0)
	}

	seeds := []*Seed{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != seedExt {
			continue
		}
		seed, err := LoadSeed(filepath.Join(c.dirs.Seeds(), entry.Name()))
		if err != nil {
			slog.Warn("seedicon: skipping seed", "file", entry.Name(), "err", err)
			continue
		}
		seeds = append(seeds, seed)
	}
	sort.Slice(seeds, func(i, j int) bool { return seeds[i].Name < seeds[j].Name })
	return seeds, nil
}

// Prefix returns the prefix of seed. The seed's own prefix wins, a relative
// one being placed under the configured prefix location. Otherwise the
// global default is used, and without one the well known fallback.
func (c *Config) Prefix(seed *Seed) string {
	own, location, defaultPrefix, fallback := "", c.Wine.PrefixLocation, c.Wine.DefaultPrefix, "default"
	if seed.Wine != nil {
		own = seed.Wine.Prefix
	}
	if seed.Proton != nil {
		own, location, defaultPrefix, fallback = seed.Proton.Prefix, c.Proton.PrefixLocation, c.Proton.DefaultPrefix, "proton"
	}
	if location == "" {
		location = c.dirs.Prefixes()
	}

	switch {
	case filepath.IsAbs(own):
		return own
	case own != "":
		return filepath.Join(location, own)
	case defaultPrefix != "":
		return defaultPrefix
	}
	return filepath.Join(c.dirs.Prefixes(), fallback)
}

// Runtime returns the runtime directory of seed, empty for the system one.
func (c *Config) Runtime(seed *Seed) string {
	if seed.Proton != nil {
		if seed.Proton.Runtime != "" {
			return seed.Proton.Runtime
		}
		return c.Proton.DefaultRuntime
	}
	if seed.Wine != nil && seed.Wine.Runtime != "" {
		return seed.Wine.Runtime
	}
	return c.Wine.DefaultRuntime
}

// User is the Windows user whose profile the seed's prefix holds.
func (s *Seed) User() string {
	if s.Proton != nil {
		return protonUser
	}
	if current, err := user.Current(); err == nil && current.Username != "" {
		return current.Username
	}
	return os.Getenv("USER")
}

// Runner names the kind of prefix.
func (s *Seed) Runner() string {
	if s.Proton != nil {
		return "proton"
	}
	return "wine"
}

// App returns the application called name.
func (s *Seed) App(name string) (*App, error) {
	for i := range s.Apps {
		if s.Apps[i].Name == name {
			return &s.Apps[i], nil
		}
	}
	return nil, errors.New(ErrNoApp)
}
