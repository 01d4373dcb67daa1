package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/FarhamAghdasi/send-ai/internal/config"
	"github.com/FarhamAghdasi/send-ai/internal/core"
	"github.com/FarhamAghdasi/send-ai/internal/filesystem"
	"github.com/FarhamAghdasi/send-ai/internal/output"
	"github.com/FarhamAghdasi/send-ai/internal/projects"
	"github.com/FarhamAghdasi/send-ai/internal/report"
	"github.com/FarhamAghdasi/send-ai/internal/signatures"
	"github.com/FarhamAghdasi/send-ai/internal/tokens"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	version = "0.1.0"
	logger  *zap.Logger
	verbose bool
)

var (
	bold   = color.New(color.Bold)
	accent = color.New(color.FgCyan, color.Bold)
	gray   = color.New(color.FgHiBlack)
	red    = color.New(color.FgRed)
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sendai",
		Short: "sendai - Pack a project tree into one report for an AI assistant",
		Long: `Walk a project directory, filter what matters and render the folder structure
plus file contents as a single text, JSON, Markdown or HTML report.`,
		Version: version,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
		SilenceUsage: true,
	}

	// Global verbose flag
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Disable built-in help command
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(projectsCmd())
	rootCmd.AddCommand(patternsCmd())
	rootCmd.AddCommand(helpCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, config.ErrInvalidConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// initLogger builds the development logger under --verbose and an error-only
// JSON logger otherwise
func initLogger() error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.Config{
			Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
			Encoding:         "json",
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig:    zap.NewProductionEncoderConfig(),
		}
		logger, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// scanFlags holds the raw values of the scan command flags
type scanFlags struct {
	configFile        string
	projectsFile      string
	projectType       string
	excludeFolders    []string
	excludeExtensions []string
	filterFolder      string
	folderPolicy      string
	keyword           string
	keywordRequired   bool
	regex             string
	regexRequired     bool
	minSize           string
	modifiedAfter     string
	format            string
	outputFile        string
	outputDir         string
	split             bool
	stdout            bool
	workers           int
	maxRead           string
	fallbackEncoding  string
	tokens            bool
	tokensModel       string
}

// scanCmd creates the scan command
func scanCmd() *cobra.Command {
	var f scanFlags

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a project and write the report",
		Long: `Walk the project directory, apply folder, extension, size, date, keyword and
regex filters, read admitted files in parallel and render the report.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}

			if err := initLogger(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			defer logger.Sync()

			// Load configuration
			cfg, err := config.Load(f.configFile)
			if err != nil {
				logger.Error("Failed to load config", zap.Error(err))
				return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
			}

			// Override config with CLI flags
			explicit, err := f.apply(cmd, cfg)
			if err != nil {
				return err
			}

			root, err := filepath.Abs(path)
			if err != nil {
				return err
			}

			projectType, err := cfg.ResolveProject(root, explicit...)
			if err != nil {
				return err
			}

			filterCfg, err := cfg.Validate(root)
			if err != nil {
				return err
			}
			format, _ := cfg.ReportFormat()
			maxRead, _ := cfg.MaxReadBytes()

			logger.Debug("Effective configuration", zap.String("config", cfg.String()))

			// Status goes to stderr when the report itself is on stdout
			console := io.Writer(os.Stdout)
			colorOutput := report.ColorSupported()
			if cfg.Stdout {
				console = os.Stderr
				colorOutput = isatty.IsTerminal(os.Stderr.Fd())
			}
			setColor(colorOutput)
			printBanner(console, root, projectType, format)

			var counter core.TokenCounter
			if cfg.Tokens {
				c, err := tokens.NewCounter(cfg.TokensModel)
				if err != nil {
					return err
				}
				counter = c
			}

			pipeline, err := core.NewPipeline(core.Options{
				Filter:           filterCfg,
				Workers:          cfg.Workers,
				MaxReadBytes:     maxRead,
				FallbackEncoding: cfg.FallbackEncoding,
				Tokens:           counter,
			}, logger)
			if err != nil {
				return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
			}
			if colorOutput {
				pipeline.SetProgressCallback(newProgress(console))
			}

			result, err := pipeline.Scan(root)
			if err != nil {
				logger.Error("Scan failed", zap.Error(err))
				return err
			}

			renderer, err := report.NewRenderer(format)
			if err != nil {
				return err
			}
			content, err := renderer.Render(result)
			if err != nil {
				return fmt.Errorf("failed to render report: %w", err)
			}

			var written []string
			switch {
			case cfg.Stdout:
				fmt.Print(content)
			case cfg.OutputFile != "":
				if err := output.WriteFile(cfg.OutputFile, content); err != nil {
					return err
				}
				written = []string{cfg.OutputFile}
			default:
				dir, _ := cfg.OutputPath(root)
				written, err = output.NewWriter(dir, logger).Write(content, format.Extension(), cfg.Split)
				if err != nil {
					return err
				}
			}

			report.PrintSummary(console, result, written, colorOutput)
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "YAML configuration file")
	cmd.Flags().StringVar(&f.projectsFile, "projects-file", "", "YAML file overriding project type defaults")
	cmd.Flags().StringVarP(&f.projectType, "project-type", "t", "", "Project type (default: detected from the root)")

	// Filter flags
	cmd.Flags().StringSliceVar(&f.excludeFolders, "exclude-folders", nil, "Folder names or root-relative paths to exclude (comma-separated)")
	cmd.Flags().StringSliceVar(&f.excludeExtensions, "exclude-ext", nil, "File extensions to exclude (comma-separated)")
	cmd.Flags().StringVar(&f.filterFolder, "filter", "", "Only include files under folders whose name contains this text")
	cmd.Flags().StringVar(&f.folderPolicy, "folder-policy", "", "Folder filter policy: ancestor, every-level")
	cmd.Flags().StringVar(&f.keyword, "keyword", "", "Keyword to locate in file contents (case-sensitive)")
	cmd.Flags().BoolVar(&f.keywordRequired, "keyword-required", false, "Drop the contents of files without the keyword")
	cmd.Flags().StringVar(&f.regex, "regex", "", "Regular expression to locate in file contents")
	cmd.Flags().BoolVar(&f.regexRequired, "regex-required", false, "Drop the contents of files without a regex match")
	cmd.Flags().StringVar(&f.minSize, "min-size", "", "Minimum file size, e.g. 512 or 4K")
	cmd.Flags().StringVar(&f.modifiedAfter, "modified-after", "", "Only include files modified after this date (YYYY-MM-DD)")

	// Loader flags
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Number of worker goroutines (default: CPU cores * 2)")
	cmd.Flags().StringVar(&f.maxRead, "max-read", "", "Per-file read ceiling (default: 1M)")
	cmd.Flags().StringVar(&f.fallbackEncoding, "fallback-encoding", "", "Charset for files that are not UTF-8, e.g. latin1, shift_jis")
	cmd.Flags().BoolVar(&f.tokens, "tokens", false, "Count tokens per file")
	cmd.Flags().StringVar(&f.tokensModel, "tokens-model", "", "Model whose tokenizer is used (default: gpt-4)")

	// Report flags
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "Report format: txt, json, md, html")
	cmd.Flags().StringVarP(&f.outputFile, "output", "o", "", "Write the report to this file")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "Directory for numbered reports (default: <path>/output)")
	cmd.Flags().BoolVar(&f.split, "split", false, "Split large reports into parts")
	cmd.Flags().BoolVar(&f.stdout, "stdout", false, "Print the report to stdout instead of saving it")

	return cmd
}

// projectFlags maps flags that project defaults may fill to config keys. Set
// on the command line, even to an empty value, they win over the defaults.
var projectFlags = map[string]string{
	"exclude-folders": "exclude_folders",
	"exclude-ext":     "exclude_extensions",
	"filter":          "filter_folder",
	"keyword":         "keyword",
	"regex":           "regex",
	"min-size":        "min_size",
	"modified-after":  "modified_after",
	"format":          "format",
}

// apply overrides cfg with every flag set on the command line and returns the
// config keys that project defaults must not fill
func (f *scanFlags) apply(cmd *cobra.Command, cfg *config.Config) ([]string, error) {
	flags := cmd.Flags()

	var explicit []string
	for name, key := range projectFlags {
		if flags.Changed(name) {
			explicit = append(explicit, key)
		}
	}

	if f.projectsFile != "" {
		cfg.ProjectsFile = f.projectsFile
	}
	if f.projectType != "" {
		cfg.ProjectType = f.projectType
	}
	if flags.Changed("exclude-folders") {
		cfg.ExcludeFolders = f.excludeFolders
	}
	if flags.Changed("exclude-ext") {
		cfg.ExcludeExtensions = f.excludeExtensions
	}
	if flags.Changed("filter") {
		cfg.FilterFolder = f.filterFolder
	}
	if f.folderPolicy != "" {
		cfg.FolderPolicy = f.folderPolicy
	}
	if flags.Changed("keyword") {
		cfg.Keyword = f.keyword
	}
	if flags.Changed("keyword-required") {
		cfg.KeywordRequired = f.keywordRequired
	}
	if flags.Changed("regex") {
		cfg.Regex = f.regex
	}
	if flags.Changed("regex-required") {
		cfg.RegexRequired = f.regexRequired
	}
	if f.minSize != "" {
		n, err := filesystem.ParseSize(f.minSize)
		if err != nil {
			return nil, fmt.Errorf("%w: --min-size: %v", config.ErrInvalidConfig, err)
		}
		cfg.MinSize = n
	}
	if flags.Changed("modified-after") {
		cfg.ModifiedAfter = f.modifiedAfter
	}
	if f.format != "" {
		cfg.Format = f.format
	}
	if f.outputFile != "" {
		cfg.OutputFile = f.outputFile
	}
	if f.outputDir != "" {
		cfg.OutputDir = f.outputDir
	}
	if flags.Changed("split") {
		cfg.Split = f.split
	}
	if flags.Changed("stdout") {
		cfg.Stdout = f.stdout
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.maxRead != "" {
		cfg.MaxRead = f.maxRead
	}
	if f.fallbackEncoding != "" {
		cfg.FallbackEncoding = f.fallbackEncoding
	}
	if flags.Changed("tokens") {
		cfg.Tokens = f.tokens
	}
	if f.tokensModel != "" {
		cfg.TokensModel = f.tokensModel
	}

	return explicit, nil
}

// newProgress returns a progress callback drawing a single status line.
// Load progress arrives from worker goroutines.
func newProgress(w io.Writer) core.ProgressCallback {
	var mu sync.Mutex
	return func(phase string, current, total int, message string) {
		mu.Lock()
		defer mu.Unlock()

		switch phase {
		case "walk":
			gray.Fprint(w, "  Files:     ")
			fmt.Fprintln(w, message)
		case "load":
			if total == 0 {
				return
			}
			barWidth := 30
			filled := barWidth * current / total
			bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
			fmt.Fprintf(w, "\r\033[K")
			gray.Fprint(w, "  Reading:   ")
			accent.Fprintf(w, "[%s] %.1f%%", bar, float64(current)/float64(total)*100)
			fmt.Fprintf(w, " (%d/%d)", current, total)
			if current == total {
				fmt.Fprintln(w)
			}
		}
	}
}

func setColor(enabled bool) {
	for _, c := range []*color.Color{bold, accent, gray, red} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

// printBanner prints the startup banner
func printBanner(w io.Writer, root, projectType string, format report.Format) {
	fmt.Fprintln(w)
	accent.Fprintf(w, "sendai v%s\n", version)
	fmt.Fprintln(w)
	gray.Fprint(w, "  Scanning:  ")
	fmt.Fprintln(w, root)
	gray.Fprint(w, "  Project:   ")
	fmt.Fprintln(w, projectType)
	gray.Fprint(w, "  Format:    ")
	fmt.Fprintln(w, format)
	fmt.Fprintln(w)
}

// projectsCmd creates the projects command
func projectsCmd() *cobra.Command {
	var projectsFile string

	cmd := &cobra.Command{
		Use:   "projects [path]",
		Short: "List project types and their default filters",
		Long: `Display the defaults applied for every project type. With a path, also
report which type is detected for that directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := projects.LoadFile(projectsFile)
			if err != nil {
				return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
			}

			setColor(report.ColorSupported())
			w := cmd.OutOrStdout()

			for _, name := range table.Names() {
				d, _ := table.Get(name)
				bold.Fprintln(w, name)
				printDefault(w, "exclude folders", strings.Join(d.ExcludeFolders, ", "))
				printDefault(w, "exclude ext", strings.Join(d.ExcludeExtensions, ", "))
				printDefault(w, "filter folder", d.FilterFolder)
				printDefault(w, "keyword", d.Keyword)
				printDefault(w, "regex", d.Regex)
				printDefault(w, "format", d.OutputFormat)
				fmt.Fprintln(w)
			}

			if len(args) == 1 {
				gray.Fprint(w, "Detected:  ")
				accent.Fprintln(w, projects.Detect(args[0]))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectsFile, "projects-file", "", "YAML file overriding project type defaults")
	return cmd
}

func printDefault(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	gray.Fprintf(w, "  %-16s", label+":")
	fmt.Fprintln(w, value)
}

// patternsCmd creates the patterns command
func patternsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List sensitive content patterns",
		Long:  `Display the built-in patterns used to flag files with secrets or credentials.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := signatures.Builtin()
			if err != nil {
				return err
			}

			setColor(report.ColorSupported())
			w := cmd.OutOrStdout()

			bold.Fprintln(w, "SENSITIVE CONTENT PATTERNS:")
			for _, sig := range db.Signatures {
				fmt.Fprintf(w, "  %s ", red.Sprint("⚠"))
				fmt.Fprintf(w, "%-24s %s\n", sig.ID, sig.Name)
				if sig.Description != "" {
					gray.Fprintf(w, "    %s\n", sig.Description)
				}
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Flagged files are rendered in full with a warning line.")
			return nil
		},
	}
}

// helpCmd creates a detailed help command
func helpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "help",
		Short: "Show detailed help and documentation",
		Long:  `Display complete documentation including all commands, flags, and examples.`,
		Run: func(cmd *cobra.Command, args []string) {
			setColor(report.ColorSupported())
			w := cmd.OutOrStdout()
			section := func(title string) {
				fmt.Fprintln(w)
				accent.Fprintln(w, title)
				fmt.Fprintln(w)
			}
			flag := func(name, desc string) {
				fmt.Fprintf(w, "  %s %s\n", bold.Sprintf("%-26s", name), desc)
			}

			section("ABOUT")
			fmt.Fprintln(w, "  sendai packs a project into one report you can paste into an AI assistant:")
			fmt.Fprintln(w, "  the folder tree, a summary and the content of every admitted file.")

			section("COMMANDS")
			flag("scan [path]", "Scan a project and write the report")
			flag("projects [path]", "List project type defaults, detect the type of path")
			flag("patterns", "List sensitive content patterns")

			section("FILTER FLAGS")
			flag("-t, --project-type <type>", "python, nodejs, java, go, laravel, nextjs, reactjs, generic")
			flag("--exclude-folders <list>", "Folder names or root-relative paths to skip")
			flag("--exclude-ext <list>", "Extensions to skip, compound ones like tar.gz allowed")
			flag("--filter <text>", "Only folders whose name contains text; --filter= clears the project default")
			flag("--folder-policy <policy>", "ancestor (default) or every-level")
			flag("--keyword <text>", "Locate text in contents; --keyword-required drops misses")
			flag("--regex <expr>", "Locate matches in contents; --regex-required drops misses")
			flag("--min-size <size>", "Skip smaller files, e.g. 4K")
			flag("--modified-after <date>", "Skip files not modified after YYYY-MM-DD")

			section("LOADER FLAGS")
			flag("--workers <n>", "Parallel readers (default: CPU cores * 2)")
			flag("--max-read <size>", "Per-file read ceiling (default: 1M)")
			flag("--fallback-encoding <cs>", "Charset for files that are not UTF-8")
			flag("--tokens", "Count tokens; --tokens-model picks the tokenizer")

			section("REPORT FLAGS")
			flag("-f, --format <fmt>", "txt, json, md, html")
			flag("-o, --output <file>", "Write to a file instead of the output directory")
			flag("--output-dir <dir>", "Numbered reports directory (default: <path>/output)")
			flag("--split", "Split reports over 12000 characters into parts")
			flag("--stdout", "Print the report, status goes to stderr")

			section("GLOBAL FLAGS")
			flag("-c, --config <file>", "YAML configuration file (keys as SENDAI_* variables)")
			flag("-v, --verbose", "Enable verbose logging")
			flag("--version", "Show version")

			section("EXAMPLES")
			gray.Fprintln(w, "  # Scan the current directory with detected defaults")
			fmt.Fprintln(w, "  sendai scan")
			fmt.Fprintln(w)
			gray.Fprintln(w, "  # Markdown report of Go sources mentioning a keyword")
			fmt.Fprintln(w, "  sendai scan --project-type=go --keyword=Handler --format=md ./service")
			fmt.Fprintln(w)
			gray.Fprintln(w, "  # Only files defining functions, printed as JSON")
			fmt.Fprintln(w, "  sendai scan --regex='func \\w+' --regex-required --format=json --stdout .")
			fmt.Fprintln(w)
		},
	}
}
