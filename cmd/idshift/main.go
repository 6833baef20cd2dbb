package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/idshift/idshift/internal/catalog"
	"github.com/idshift/idshift/internal/cleanup"
	"github.com/idshift/idshift/internal/config"
	"github.com/idshift/idshift/internal/container"
	"github.com/idshift/idshift/internal/engine"
	"github.com/idshift/idshift/internal/executor"
	"github.com/idshift/idshift/internal/locate"
	"github.com/idshift/idshift/internal/logging"
	"github.com/idshift/idshift/internal/privilege"
	"github.com/idshift/idshift/internal/procguard"
	"github.com/idshift/idshift/internal/values"
	"github.com/idshift/idshift/pkg/report"
)

var log = logging.L("cli")

var (
	version = "0.1.0"

	cfgFile      string
	logLevel     string
	logFormat    string
	targetPath   string
	outputFormat string
	assumeYes    bool
	randomAll    bool
	forceBackup  bool
	noClean      bool

	machineID   string
	macAddress  string
	sqmID       string
	devDeviceID string
)

var rootCmd = &cobra.Command{
	Use:   "idshift",
	Short: "Rewrite Cursor's machine identifiers",
	Long: `idshift rewrites the machine-identifying values Cursor reads at startup:
machineId, the reported MAC address, the Windows SQM id, and devDeviceId.
It patches the installed main.js in place, whether that lives in a plain
resources tree, a Linux AppImage, or a signed macOS app bundle.`,
}

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Patch the installed app",
	Run: func(cmd *cobra.Command, args []string) {
		runPatch()
	},
}

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Show the install that would be patched",
	Run: func(cmd *cobra.Command, args []string) {
		runLocate()
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the app's cached identity state",
	Run: func(cmd *cobra.Command, args []string) {
		runClean()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("idshift v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is idshift.yaml in the user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")

	patchCmd.Flags().StringVar(&targetPath, "target", "", "main.js, install directory, AppImage, or app bundle (default: auto-detect)")
	patchCmd.Flags().StringVar(&outputFormat, "output", "", "report format: text, json, or yaml")
	patchCmd.Flags().BoolVar(&assumeYes, "yes", false, "no prompts, accept defaults")
	patchCmd.Flags().BoolVar(&randomAll, "random", false, "generate every value without asking")
	patchCmd.Flags().BoolVar(&forceBackup, "force", false, "replace an existing backup instead of keeping it")
	patchCmd.Flags().BoolVar(&noClean, "no-clean", false, "skip the cache cleanup after patching")
	patchCmd.Flags().StringVar(&machineID, "machine-id", "", "replacement machineId (default: random uuid)")
	patchCmd.Flags().StringVar(&macAddress, "mac-address", "", "replacement MAC address (default: random)")
	patchCmd.Flags().StringVar(&sqmID, "sqm-id", "", "replacement Windows SQM id (default: empty)")
	patchCmd.Flags().StringVar(&devDeviceID, "dev-device-id", "", "replacement devDeviceId (default: random uuid)")

	rootCmd.AddCommand(patchCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if outputFormat != "" {
		cfg.Output = outputFormat
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, nil)
	cfg.Validate()
	return cfg
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func runPatch() {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdin := bufio.NewReader(os.Stdin)

	target := targetPath
	if target == "" {
		target = cfg.Target
	}
	if target == "" {
		var err error
		target, err = findTarget(stdin)
		if err != nil {
			fatal(err)
		}
	}
	log.Info("patching", logging.KeyPath, target)

	if privilege.NeedsElevation(target) && !privilege.IsElevated() {
		log.Warn("target looks system-owned and this process is not elevated, writes may fail", logging.KeyPath, target)
	}
	checkRunningApp(stdin)

	preset, err := presetValues()
	if err != nil {
		fatal(err)
	}

	strategy, err := container.New(container.Options{
		Path:          target,
		WorkDir:       cfg.WorkDir,
		BackupSuffix:  cfg.BackupSuffix,
		ExtractDir:    cfg.ExtractDir,
		AppImageTool:  cfg.AppImageTool,
		Runner:        executor.New(cfg.ToolTimeoutSeconds),
		ReplaceBackup: backupPolicy(stdin),
	})
	if err != nil {
		fatal(err)
	}

	opened, err := strategy.Open(ctx)
	if err != nil {
		fatal(err)
	}

	src := newPromptSource(stdin, assumeYes || randomAll, preset)
	content, outcomes := engine.Apply(opened.Content, catalog.All(), src, runtime.GOOS)

	if anySucceeded(outcomes) {
		opened.Content = content
		if err := strategy.Commit(ctx, opened); err != nil {
			fatal(err)
		}
	} else {
		log.Info("no substitution landed, nothing to write")
	}

	rep := report.New(opened.SourcePath, strategy.Name(), opened.BackupPath, outcomes)
	rendered, err := rep.Render(cfg.Output)
	if err != nil {
		log.Warn("unknown report format, falling back to text", logging.KeyError, err)
		rendered, _ = rep.Render("text")
	}
	fmt.Print(rendered)

	if !noClean {
		root, err := cleanup.ProfileRoot()
		if err != nil {
			log.Warn("cannot determine profile directory", logging.KeyError, err)
			return
		}
		cleanup.Clean(cleanup.ProfileDir(root))
	}
}

// findTarget auto-detects the install when no --target was given.
func findTarget(stdin *bufio.Reader) (string, error) {
	path, err := locate.NewFinder().App()
	if err == nil {
		return path, nil
	}

	var ambiguous *locate.AmbiguousError
	if errors.As(err, &ambiguous) {
		if assumeYes {
			return "", fmt.Errorf("%s or pass --target", ambiguous.Error())
		}
		return pickOne(stdin, ambiguous.Candidates)
	}
	if errors.Is(err, locate.ErrNotFound) {
		return "", errors.New("no cursor installation found; pass --target with the main.js, install directory, AppImage, or app bundle")
	}
	return "", err
}

func checkRunningApp(stdin *bufio.Reader) {
	hits, err := procguard.Running()
	if err != nil {
		log.Warn("could not scan processes", logging.KeyError, err)
		return
	}
	if len(hits) == 0 {
		return
	}

	log.Warn("cursor appears to be running", "processes", strings.Join(hits, ", "))
	if assumeYes {
		return
	}
	if !confirm(stdin, "Cursor appears to be running and can overwrite the patch on exit. Continue anyway?", false) {
		fatal(errors.New("aborted"))
	}
}

// backupPolicy decides what happens to a backup left by an earlier run. The
// first backup is the pristine one, so keeping it is the default; --force
// replaces it without asking.
func backupPolicy(stdin *bufio.Reader) func(string) bool {
	return func(path string) bool {
		if forceBackup {
			return true
		}
		if assumeYes {
			return false
		}
		return confirm(stdin, fmt.Sprintf("Backup %s already exists. Replace it with a fresh copy?", path), false)
	}
}

func presetValues() (map[catalog.Kind]string, error) {
	flags := map[catalog.Kind]string{
		catalog.KindMachineID:   machineID,
		catalog.KindMacAddress:  macAddress,
		catalog.KindSqmID:       sqmID,
		catalog.KindDevDeviceID: devDeviceID,
	}

	preset := make(map[catalog.Kind]string)
	for kind, value := range flags {
		if value == "" {
			continue
		}
		if err := values.Validate(kind, value); err != nil {
			return nil, err
		}
		preset[kind] = values.Normalize(kind, value)
	}
	return preset, nil
}

func anySucceeded(outcomes []engine.Outcome) bool {
	for _, o := range outcomes {
		if o.Succeeded() {
			return true
		}
	}
	return false
}

func runLocate() {
	loadConfig()

	path, err := locate.NewFinder().App()
	if err == nil {
		fmt.Println(path)
		return
	}

	var ambiguous *locate.AmbiguousError
	if errors.As(err, &ambiguous) {
		for _, c := range ambiguous.Candidates {
			fmt.Println(c)
		}
		return
	}
	fatal(err)
}

func runClean() {
	loadConfig()

	root, err := cleanup.ProfileRoot()
	if err != nil {
		fatal(err)
	}
	dir := cleanup.ProfileDir(root)
	removed := cleanup.Clean(dir)
	fmt.Printf("Removed %d item(s) from %s\n", removed, dir)
}
