// prebuild generates the firmware's embedded web dashboard header and stamps
// the build version before compilation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"prebuild/internal/assets"
	"prebuild/internal/config"
	"prebuild/internal/logging"
	"prebuild/internal/version"
	"prebuild/internal/watch"
)

var progName = filepath.Base(os.Args[0])

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "embed":
		runEmbed(os.Args[2:])
	case "stamp":
		runStamp(os.Args[2:])
	case "run":
		runAll(os.Args[2:])
	case "watch":
		runWatch(os.Args[2:])
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: %s <command> [options]

Commands:
  embed         Embed the web dashboard assets into the generated header
  stamp         Increment the build snapshot in the version header
  run           Run both pre-build transforms (embed, then stamp)
  watch         Embed once, then re-embed whenever a dashboard file changes

All paths resolve relative to the project root, taken from -project-dir,
prebuild.yaml, the PROJECT_DIR environment variable (a .env file is honored),
or the current directory, in that order.

Run '%s <command> -h' for command-specific help.
`, progName, progName)
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	configPath *string
	projectDir *string
	logLevel   *string
	logFormat  *string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		configPath: fs.String("config", "", "Path to config file (default: <project-dir>/prebuild.yaml)"),
		projectDir: fs.String("project-dir", "", "Project root (default: $PROJECT_DIR or the current directory)"),
		logLevel:   fs.String("log-level", "info", "Log level: debug, info, warn, error"),
		logFormat:  fs.String("log-format", "text", "Log format: text (colored) or json"),
	}
}

// setup loads the config file, applies config values for flags not
// explicitly set, installs the logger, and returns the config plus the
// absolute project root.
func setup(fs *flag.FlagSet, c *commonFlags) (*config.Config, string, error) {
	projectDir, err := config.ResolveProjectDir(*c.projectDir)
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadConfig(*c.configPath, projectDir)
	if err != nil {
		return nil, "", err
	}

	set := setFlags(fs)
	if !set["project-dir"] && cfg.ProjectDir != "" {
		projectDir, err = config.ResolveProjectDir(cfg.ProjectDir)
		if err != nil {
			return nil, "", err
		}
	}
	if !set["log-level"] && cfg.LogLevel != "" {
		*c.logLevel = cfg.LogLevel
	}
	if !set["log-format"] && cfg.LogFormat != "" {
		*c.logFormat = cfg.LogFormat
	}

	logging.Setup(*c.logLevel, *c.logFormat)
	return cfg, projectDir, nil
}

// loadConfig loads a config file. An explicit path that doesn't exist is an
// error. A missing default path is silently ignored (returns empty config).
func loadConfig(explicitPath, projectDir string) (*config.Config, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return nil, fmt.Errorf("config file not found: %s", explicitPath)
		}
		cfg, err := config.Load(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", explicitPath, err)
		}
		return cfg, nil
	}

	defaultPath := filepath.Join(projectDir, config.ConfigFileName)
	cfg, err := config.Load(defaultPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", defaultPath, err)
	}
	return cfg, nil
}

// setFlags returns the set of flag names that were explicitly provided on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	m := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { m[f.Name] = true })
	return m
}

// projectPath keeps absolute paths as-is and anchors relative ones at the
// project root.
func projectPath(projectDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(projectDir, p)
}

func addEmbedFlags(fs *flag.FlagSet) (webDir, out, namespace *string) {
	webDir = fs.String("web-dir", config.DefaultWebDir, "Web assets directory (project-root relative)")
	out = fs.String("out", config.DefaultOutput, "Generated header path (project-root relative)")
	namespace = fs.String("namespace", config.DefaultNamespace, "Namespace for the generated constants")
	return webDir, out, namespace
}

func embedOptions(fs *flag.FlagSet, cfg *config.Config, projectDir, webDir, out, namespace string) assets.Options {
	set := setFlags(fs)
	if !set["web-dir"] && cfg.Embed.WebDir != "" {
		webDir = cfg.Embed.WebDir
	}
	if !set["out"] && cfg.Embed.Output != "" {
		out = cfg.Embed.Output
	}
	if !set["namespace"] && cfg.Embed.Namespace != "" {
		namespace = cfg.Embed.Namespace
	}
	return assets.Options{
		WebDir:    projectPath(projectDir, webDir),
		Output:    projectPath(projectDir, out),
		Namespace: namespace,
	}
}

func versionFilePath(fs *flag.FlagSet, cfg *config.Config, projectDir, versionFile string) string {
	if !setFlags(fs)["version-file"] && cfg.Version.File != "" {
		versionFile = cfg.Version.File
	}
	return projectPath(projectDir, versionFile)
}

func runEmbed(args []string) {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	c := addCommonFlags(fs)
	webDir, out, namespace := addEmbedFlags(fs)
	fs.Parse(args)

	cfg, projectDir, err := setup(fs, c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	opts := embedOptions(fs, cfg, projectDir, *webDir, *out, *namespace)
	if _, err := assets.Embed(opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runStamp(args []string) {
	fs := flag.NewFlagSet("stamp", flag.ExitOnError)
	c := addCommonFlags(fs)
	versionFile := fs.String("version-file", config.DefaultVersionFile, "Version header path (project-root relative)")
	fs.Parse(args)

	cfg, projectDir, err := setup(fs, c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if _, err := version.Stamp(versionFilePath(fs, cfg, projectDir, *versionFile)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runAll runs both pre-build transforms. They are independent; embed runs
// first only so a broken dashboard aborts before the version advances.
func runAll(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	c := addCommonFlags(fs)
	webDir, out, namespace := addEmbedFlags(fs)
	versionFile := fs.String("version-file", config.DefaultVersionFile, "Version header path (project-root relative)")
	fs.Parse(args)

	cfg, projectDir, err := setup(fs, c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	opts := embedOptions(fs, cfg, projectDir, *webDir, *out, *namespace)
	if _, err := assets.Embed(opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if _, err := version.Stamp(versionFilePath(fs, cfg, projectDir, *versionFile)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	c := addCommonFlags(fs)
	webDir, out, namespace := addEmbedFlags(fs)
	debounce := fs.Duration("debounce", config.DefaultDebounce, "Quiet period before re-embedding after a change")
	fs.Parse(args)

	cfg, projectDir, err := setup(fs, c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	opts := embedOptions(fs, cfg, projectDir, *webDir, *out, *namespace)
	if !setFlags(fs)["debounce"] && cfg.Watch.Debounce != 0 {
		*debounce = time.Duration(cfg.Watch.Debounce)
	}

	rebuild := func() error {
		_, err := assets.Embed(opts)
		return err
	}

	// A failing first build is not fatal here; the next change retries.
	if err := rebuild(); err != nil {
		slog.Error("initial embed failed", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	w, err := watch.New(opts.WebDir, assets.FileSet(assets.Manifest), *debounce, rebuild)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	slog.Info("watching web assets", "dir", opts.WebDir)
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
