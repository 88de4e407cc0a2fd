package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/linksan/internal/domain/rules"
	"github.com/GriffinCanCode/linksan/internal/domain/sanitizer"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/config"
	"github.com/GriffinCanCode/linksan/internal/infrastructure/logging"
)

// maxLine bounds a single stdin line
const maxLine = 1 << 20

// output is one line of -json output
type output struct {
	Input     string `json:"input"`
	URL       string `json:"sanitized_url"`
	Removed   int    `json:"removed_count"`
	Unwrapped bool   `json:"unwrapped"`
	Message   string `json:"message"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// A bad environment must not stop a one-shot run, so defaults fill in
	cfg := config.LoadOrDefault()

	fs := flag.NewFlagSet("linksan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rulesPath := fs.String("rules", cfg.Rules.Path, "Rule file or directory (default: embedded rules)")
	pattern := fs.String("pattern", cfg.Rules.Pattern, "Glob selecting rule packs inside a rules directory")
	asJSON := fs.Bool("json", false, "Print one JSON object per URL")
	quiet := fs.Bool("q", false, "Do not print feedback messages to stderr")
	verbose := fs.Bool("v", false, "Verbose logging to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: linksan [-rules path] [-json] [-q] [url ...]")
		fmt.Fprintln(stderr, "Reads one URL per line from stdin when no URLs are given.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logCfg := logging.CLIConfig()
	if *verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(stderr, "linksan: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	set, err := loadRules(*rulesPath, *pattern, logger)
	if err != nil {
		fmt.Fprintf(stderr, "linksan: %v\n", err)
		return 1
	}
	san := sanitizer.New(sanitizer.Static(set))

	w := bufio.NewWriter(stdout)
	defer w.Flush()

	emit := func(text string) error {
		res := san.Sanitize(text)
		logger.Debug("Sanitized",
			zap.Int("removed", res.Removed),
			zap.Bool("unwrapped", res.Unwrapped),
		)
		if !*asJSON {
			if _, err := fmt.Fprintln(w, res.URL); err != nil {
				return err
			}
			if !*quiet && res.Applicable {
				fmt.Fprintln(stderr, sanitizer.Feedback(res))
			}
			return nil
		}
		line, err := sonic.Marshal(output{
			Input:     text,
			URL:       res.URL,
			Removed:   res.Removed,
			Unwrapped: res.Unwrapped,
			Message:   sanitizer.Feedback(res),
		})
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", line)
		return err
	}

	if fs.NArg() > 0 {
		for _, arg := range fs.Args() {
			if err := emit(arg); err != nil {
				fmt.Fprintf(stderr, "linksan: %v\n", err)
				return 1
			}
		}
		return 0
	}

	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := emit(line); err != nil {
			fmt.Fprintf(stderr, "linksan: %v\n", err)
			return 1
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(stderr, "linksan: failed to read stdin: %v\n", err)
		return 1
	}
	return 0
}

// loadRules reads an explicit rule location, or the embedded rules. A broken
// embedded asset leaves the CLI running with no rules.
func loadRules(path, pattern string, logger *logging.Logger) (*rules.RuleSet, error) {
	if path != "" {
		set, err := rules.LoadPath(path, pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		return set, nil
	}

	set, err := rules.DefaultOrError()
	if err != nil {
		logger.Error("Embedded rules are malformed, continuing without rules", zap.Error(err))
		return rules.Empty(), nil
	}
	return set, nil
}
