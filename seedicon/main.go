package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/go-errors/errors"
	"github.com/spf13/pflag"

	"github.com/andrewstucki/seedicon"
	"github.com/andrewstucki/seedicon/config"
	"github.com/andrewstucki/seedicon/desktop"
	"github.com/andrewstucki/seedicon/startmenu"
	"github.com/andrewstucki/seedicon/winepath"
)

const helpString = `Resolve desktop icons for applications inside Wine and Proton prefixes.

Usage: %s [options] <command> [arguments]

Commands:
  classify <file>                        classify a launch target
  winepath <prefix> <path>               translate a Windows path to the host
  icon <prefix> <windows-path> <dest>    resolve an application icon
  startmenu <seed>                       list the Start Menu of a seed
  desktop [seed [app...]]                write desktop entries for seed applications
  inspect <file|directory>               print structural information as JSON

Options:
`

type options struct {
	verbose   bool
	toWindows bool
	find      string
	root      string
	workers   int
}

func usage() {
	fmt.Fprintf(os.Stderr, helpString, filepath.Base(os.Args[0]))
	pflag.PrintDefaults()
}

func main() {
	var opts options
	pflag.Usage = usage
	pflag.BoolVarP(&opts.verbose, "verbose", "v", false, "log every resolution step and print error stacks")
	pflag.BoolVarP(&opts.toWindows, "to-windows", "w", false, "winepath: translate a host path to Windows instead")
	pflag.StringVarP(&opts.find, "find", "f", "", "startmenu: print the location of the named item only")
	pflag.StringVar(&opts.root, "root", "", "data root, overrides $"+config.RootEnv)
	pflag.IntVarP(&opts.workers, "jobs", "j", runtime.NumCPU(), "desktop/inspect: number of parallel workers")
	help := pflag.BoolP("help", "h", false, "show this help message")
	pflag.Parse()

	if *help {
		usage()
		return
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	args := pflag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	if err := run(os.Stdout, args[0], args[1:], opts); err != nil {
		fail(err, opts.verbose)
	}
}

func fail(err error, verbose bool) {
	var stackErr *errors.Error
	if verbose && errors.As(err, &stackErr) {
		fmt.Fprintln(os.Stderr, stackErr.ErrorStack())
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

var errUsage = errors.Errorf("invalid arguments, see --help")

func run(out io.Writer, command string, args []string, opts options) error {
	switch command {
	case "classify":
		if len(args) != 1 {
			return errors.New(errUsage)
		}
		resolution, err := seedicon.Classify(args[0])
		if err != nil {
			return err
		}
		return printJSON(out, struct {
			Kind string `json:"kind"`
			Path string `json:"path"`
		}{resolution.Kind.String(), resolution.Path})
	case "winepath":
		if len(args) != 2 {
			return errors.New(errUsage)
		}
		if opts.toWindows {
			fmt.Fprintln(out, winepath.ToWindows(args[0], args[1]))
		} else {
			fmt.Fprintln(out, winepath.ToHost(args[0], args[1]))
		}
		return nil
	case "icon":
		if len(args) != 3 {
			return errors.New(errUsage)
		}
		icon, err := seedicon.Resolve(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, icon)
		return nil
	case "startmenu":
		if len(args) != 1 {
			return errors.New(errUsage)
		}
		return listStartMenu(out, args[0], opts)
	case "desktop":
		return installDesktopEntries(args, opts)
	case "inspect":
		if len(args) != 1 {
			return errors.New(errUsage)
		}
		return inspect(out, args[0], opts)
	}
	return errors.New(errUsage)
}

func printJSON(out io.Writer, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func loadConfig(opts options) (*config.Config, error) {
	dirs, err := config.DefaultDirs()
	if err != nil {
		return nil, err
	}
	if opts.root != "" {
		dirs.Root = opts.root
	}
	return config.Load(dirs)
}

func listStartMenu(out io.Writer, name string, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	seed, err := cfg.Seed(name)
	if err != nil {
		return err
	}
	prefix := cfg.Prefix(seed)

	if opts.find != "" {
		location, err := startmenu.Find(prefix, seed.User(), opts.find)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, location)
		return nil
	}
	return printJSON(out, startmenu.List(prefix, seed.User()))
}

type install struct {
	seed *config.Seed
	app  config.App
}

// installs lists the applications to install: every app of every seed, or
// those of the named seed, optionally narrowed to the named apps.
func installs(cfg *config.Config, args []string) ([]install, error) {
	var seeds []*config.Seed
	if len(args) == 0 {
		var err error
		if seeds, err = cfg.Seeds(); err != nil {
			return nil, err
		}
	} else {
		seed, err := cfg.Seed(args[0])
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, seed)
	}

	var list []install
	for _, seed := range seeds {
		if len(args) < 2 {
			for _, app := range seed.Apps {
				list = append(list, install{seed: seed, app: app})
			}
			continue
		}
		for _, name := range args[1:] {
			app, err := seed.App(name)
			if err != nil {
				return nil, errors.WrapPrefix(err, seed.Name+"/"+name, 0)
			}
			list = append(list, install{seed: seed, app: *app})
		}
	}
	return list, nil
}

func installDesktopEntries(args []string, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := cfg.Dirs().Create(); err != nil {
		return err
	}
	list, err := installs(cfg, args)
	if err != nil {
		return err
	}

	pool := newPool(opts.workers)
	defer pool.Release()
	for _, item := range list {
		item := item
		pool.Enqueue(item.seed.Name+"/"+item.app.Name, func() error {
			return installApp(cfg, item.seed, item.app)
		})
	}
	if failed := pool.Wait(); failed > 0 {
		return errors.Errorf("%d applications failed", failed)
	}
	return nil
}

func installApp(cfg *config.Config, seed *config.Seed, app config.App) error {
	dirs := cfg.Dirs()
	prefix := cfg.Prefix(seed)

	icon, err := seedicon.Resolve(prefix, app.Location, desktop.IconFile(dirs.Icons(), seed.Name, app.Name))
	if err != nil {
		return err
	}
	exec, err := desktop.Exec(prefix, cfg.Runtime(seed), app.Location, app.Arguments)
	if err != nil {
		return err
	}

	entry := desktop.Entry{
		Name:    app.Name,
		Comment: fmt.Sprintf("Run %s in the %s seed %s", app.Name, seed.Runner(), seed.Name),
		Exec:    exec,
		Icon:    icon.String(),
	}
	if app.Category != "" {
		entry.Categories = []string{app.Category}
	}
	path := desktop.EntryFile(dirs.Applications(), seed.Name, app.Name)
	slog.Debug("seedicon: writing desktop entry", "seed", seed.Name, "app", app.Name, "path", path)
	return entry.Write(path)
}

type file struct {
	Name string `json:"name"`
	*seedicon.Info
}

func inspect(out io.Writer, path string, opts options) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, 0)
	}

	var files []file
	if info.IsDir() {
		files, err = inspectDirectory(path, opts.workers)
	} else {
		files, err = inspectFile(path)
	}
	if err != nil {
		return err
	}
	return printJSON(out, files)
}

func inspectDirectory(dir string, workers int) ([]file, error) {
	var mutex sync.Mutex
	files := []file{}

	pool := newPool(workers)
	defer pool.Release()
	if err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		isSymlink := info.Mode()&os.ModeSymlink > 0
		isEmpty := info.Size() == 0
		if !info.IsDir() && !isSymlink && !isEmpty {
			pool.Enqueue(path, func() error {
				info, err := seedicon.Inspect(path)
				if err != nil {
					return err
				}
				mutex.Lock()
				files = append(files, file{Info: info, Name: path})
				mutex.Unlock()
				return nil
			})
		}
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, 0)
	}
	pool.Wait()

	return files, nil
}

func inspectFile(path string) ([]file, error) {
	info, err := seedicon.Inspect(path)
	if err != nil {
		return nil, err
	}
	return []file{
		{Info: info, Name: path},
	}, nil
}
