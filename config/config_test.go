package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaultDirs(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv(RootEnv, "")

	dirs, err := DefaultDirs()
	require.NoError(t, err)
	require.Equal(t, Dirs{Root: "/data/seedicon", Data: "/data"}, dirs)
	require.Equal(t, "/data/seedicon/seeds", dirs.Seeds())
	require.Equal(t, "/data/seedicon/icons", dirs.Icons())
	require.Equal(t, "/data/seedicon/prefixes", dirs.Prefixes())
	require.Equal(t, "/data/applications/seedicon", dirs.Applications())
	require.Equal(t, "/data/seedicon/seedicon.toml", dirs.File())

	t.Setenv(RootEnv, "/srv/seeds")
	dirs, err = DefaultDirs()
	require.NoError(t, err)
	require.Equal(t, Dirs{Root: "/srv/seeds", Data: "/data"}, dirs)

	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/seeder")
	dirs, err = DefaultDirs()
	require.NoError(t, err)
	require.Equal(t, "/home/seeder/.local/share", dirs.Data)
}

func TestCreate(t *testing.T) {
	root := t.TempDir()
	dirs := Dirs{Root: filepath.Join(root, "seedicon"), Data: root}
	require.NoError(t, dirs.Create())
	for _, dir := range []string{dirs.Seeds(), dirs.Icons(), dirs.Prefixes(), dirs.Applications()} {
		require.DirExists(t, dir)
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	dirs := Dirs{Root: root, Data: root}

	cfg, err := Load(dirs)
	require.NoError(t, err)
	if diff := cmp.Diff(Wine{
		PrefixLocation: filepath.Join(root, "prefixes"),
		DefaultPrefix:  filepath.Join(root, "prefixes", "default"),
	}, cfg.Wine); diff != "" {
		t.Errorf("default wine configuration mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, filepath.Join(root, "prefixes", "proton"), cfg.Proton.DefaultPrefix)

	write(t, dirs.File(), `
[wine]
wine_prefix_location = "/games/prefixes"
default_wine_runtime = "/opt/wine-9"
unknown = true
`)
	cfg, err = Load(dirs)
	require.NoError(t, err)
	require.Equal(t, "/games/prefixes", cfg.Wine.PrefixLocation)
	require.Equal(t, "/opt/wine-9", cfg.Wine.DefaultRuntime)
	// keys missing from the file keep their defaults
	require.Equal(t, filepath.Join(root, "prefixes", "default"), cfg.Wine.DefaultPrefix)
	require.Equal(t, dirs, cfg.Dirs())

	write(t, dirs.File(), "[wine\n")
	_, err = Load(dirs)
	require.Error(t, err)
}

func TestSeeds(t *testing.T) {
	root := t.TempDir()
	dirs := Dirs{Root: root, Data: root}
	cfg := Default(dirs)

	seeds, err := cfg.Seeds()
	require.NoError(t, err)
	require.Empty(t, seeds)

	write(t, filepath.Join(dirs.Seeds(), "games.toml"), `
[wine]
wine_prefix = "games"

[[apps]]
application_name = "Seed"
application_location = 'C:\Games\Seed\Seed.exe'
arguments = "-windowed"

[[apps]]
application_name = "Editor"
application_location = 'C:\ProgramData\Microsoft\Windows\Start Menu\Programs\Editor.lnk'
category = "Development"
`)
	write(t, filepath.Join(dirs.Seeds(), "steam.toml"), `
[proton]
proton_runtime = "/opt/proton"
game_id = "12345"
`)
	write(t, filepath.Join(dirs.Seeds(), "broken.toml"), `
[wine]
[proton]
`)
	write(t, filepath.Join(dirs.Seeds(), "notes.txt"), "not a seed")

	seeds, err = cfg.Seeds()
	require.NoError(t, err)
	require.Len(t, seeds, 2)

	games := seeds[0]
	expected := &Seed{
		Name: "games",
		Wine: &WineSeed{Prefix: "games"},
		Apps: []App{
			{Name: "Seed", Location: `C:\Games\Seed\Seed.exe`, Arguments: "-windowed"},
			{Name: "Editor", Location: `C:\ProgramData\Microsoft\Windows\Start Menu\Programs\Editor.lnk`, Category: "Development"},
		},
	}
	if diff := cmp.Diff(expected, games); diff != "" {
		t.Errorf("seed mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "wine", games.Runner())

	steam := seeds[1]
	require.Equal(t, "steam", steam.Name)
	require.Equal(t, "proton", steam.Runner())
	require.Equal(t, "steamuser", steam.User())
	require.Equal(t, "12345", steam.Proton.GameID)

	app, err := games.App("Editor")
	require.NoError(t, err)
	require.Equal(t, "Development", app.Category)
	_, err = games.App("Missing")
	require.ErrorIs(t, err, ErrNoApp)

	_, err = cfg.Seed("broken")
	require.ErrorIs(t, err, ErrInvalidSeed)
	_, err = cfg.Seed("missing")
	require.ErrorIs(t, err, os.ErrNotExist)

	seed, err := cfg.Seed("steam")
	require.NoError(t, err)
	require.Equal(t, "/opt/proton", cfg.Runtime(seed))
}

func TestPrefix(t *testing.T) {
	dirs := Dirs{Root: "/root/seedicon", Data: "/data"}
	cfg := Default(dirs)

	tests := []struct {
		name     string
		cfg      *Config
		seed     *Seed
		expected string
	}{
		{
			name:     "absolute seed prefix",
			cfg:      cfg,
			seed:     &Seed{Wine: &WineSeed{Prefix: "/games/pfx"}},
			expected: "/games/pfx",
		},
		{
			name:     "relative seed prefix",
			cfg:      &Config{Wine: Wine{PrefixLocation: "/games"}, dirs: dirs},
			seed:     &Seed{Wine: &WineSeed{Prefix: "seed"}},
			expected: "/games/seed",
		},
		{
			name:     "relative seed prefix without location",
			cfg:      &Config{dirs: dirs},
			seed:     &Seed{Wine: &WineSeed{Prefix: "seed"}},
			expected: "/root/seedicon/prefixes/seed",
		},
		{
			name:     "global default",
			cfg:      &Config{Wine: Wine{DefaultPrefix: "/games/default"}, dirs: dirs},
			seed:     &Seed{Wine: &WineSeed{}},
			expected: "/games/default",
		},
		{
			name:     "fallback",
			cfg:      &Config{dirs: dirs},
			seed:     &Seed{Wine: &WineSeed{}},
			expected: "/root/seedicon/prefixes/default",
		},
		{
			name:     "proton default",
			cfg:      cfg,
			seed:     &Seed{Proton: &ProtonSeed{}},
			expected: "/root/seedicon/prefixes/proton",
		},
		{
			name:     "proton fallback",
			cfg:      &Config{dirs: dirs},
			seed:     &Seed{Proton: &ProtonSeed{}},
			expected: "/root/seedicon/prefixes/proton",
		},
		{
			name:     "proton seed prefix",
			cfg:      &Config{Proton: Proton{PrefixLocation: "/steam"}, dirs: dirs},
			seed:     &Seed{Proton: &ProtonSeed{Prefix: "12345"}},
			expected: "/steam/12345",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, test.cfg.Prefix(test.seed))
		})
	}
}

func TestRuntime(t *testing.T) {
	cfg := &Config{Wine: Wine{DefaultRuntime: "/opt/wine"}}
	require.Equal(t, "/opt/wine", cfg.Runtime(&Seed{Wine: &WineSeed{}}))
	require.Equal(t, "/opt/wine-ge", cfg.Runtime(&Seed{Wine: &WineSeed{Runtime: "/opt/wine-ge"}}))
	require.Equal(t, "", cfg.Runtime(&Seed{Proton: &ProtonSeed{}}))
}
