// Package main is the command-line tool that reads URLs and prints their
// canonical forms.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/urldedup"
	"github.com/AdguardTeam/urldedup/filterlist"
	goFlags "github.com/jessevdk/go-flags"
)

// Options -- console arguments
type Options struct {
	// Verbose - should we write debug-level log
	Verbose bool `short:"v" long:"verbose" description:"Verbose output (optional)." optional:"yes" optional-value:"true"`

	// LogOutput - path to the log file
	LogOutput string `short:"o" long:"output" description:"Path to the log file. If not set, it writes to stderr." default:""`

	// RuleLists - paths to the rule lists
	RuleLists []string `short:"r" long:"rules" description:"Path to a JSON or YAML rule list. Can be specified multiple times."`

	// Input - path to the file with URLs
	Input string `short:"i" long:"input" description:"Path to the file with URLs, one per line. If not set, it reads stdin." default:""`

	// Unique - whether to print every canonical URL only once
	Unique bool `short:"u" long:"unique" description:"Print each canonical URL only once (optional)." optional:"yes" optional-value:"true"`
}

func main() {
	var options Options
	var parser = goFlags.NewParser(&options, goFlags.Default)

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*goFlags.Error); ok && flagsErr.Type == goFlags.ErrHelp {
			os.Exit(0)
		} else {
			os.Exit(1)
		}
	}

	err = run(options, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "urldedup: %s\n", err)

		os.Exit(1)
	}
}

// run loads the rules and processes the URLs according to options.
func run(options Options, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	logOutput := stderr
	if options.LogOutput != "" {
		// #nosec G302 G304 -- Trust the path given by the user.
		var file *os.File
		file, err = os.OpenFile(options.LogOutput, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("creating log file: %w", err)
		}
		defer func() { err = errors.WithDeferred(err, file.Close()) }()

		logOutput = file
	}

	logger := newLogger(logOutput, options.Verbose)

	p, err := newProcessor(logger, options.RuleLists)
	if err != nil {
		return err
	}

	in := stdin
	if options.Input != "" {
		var file *os.File
		file, err = os.Open(options.Input)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer func() { err = errors.WithDeferred(err, file.Close()) }()

		in = file
	}

	w := bufio.NewWriter(stdout)
	err = processURLs(logger, p, in, w, options.Unique)
	if err != nil {
		return err
	}

	return w.Flush()
}

// newLogger returns a logger writing to output.  Debug messages are only
// written when verbose is true.
func newLogger(output io.Writer, verbose bool) (l *slog.Logger) {
	lvl := slog.LevelInfo
	if verbose {
		lvl = slog.LevelDebug
	}

	return slogutil.New(&slogutil.Config{
		Output:       output,
		Format:       slogutil.FormatDefault,
		Level:        lvl,
		AddTimestamp: true,
	})
}

// newProcessor opens the rule lists at paths and loads them into a new
// processor.
func newProcessor(logger *slog.Logger, paths []string) (p *urldedup.Processor, err error) {
	lists := make([]filterlist.RuleList, 0, len(paths))
	for i, path := range paths {
		var l *filterlist.FileRuleList
		l, err = filterlist.NewFileRuleList(i+1, path)
		if err != nil {
			// Close the lists opened so far, since the processor won't.
			for _, opened := range lists {
				err = errors.WithDeferred(err, opened.Close())
			}

			return nil, fmt.Errorf("rule list %q: %w", path, err)
		}

		logger.Debug("opened rule list", "id", i+1, "path", path)

		lists = append(lists, l)
	}

	p, err = urldedup.NewProcessor(&urldedup.Config{
		Logger: logger,
		Lists:  lists,
	})
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	return p, nil
}

// processURLs writes the canonical form of every URL read from r into w, one
// per line.  Blank lines are skipped.  If unique is true, the URLs already
// written are skipped as well.
func processURLs(
	logger *slog.Logger,
	p *urldedup.Processor,
	r io.Reader,
	w io.Writer,
	unique bool,
) (err error) {
	var seen map[string]struct{}
	if unique {
		seen = map[string]struct{}{}
	}

	total, written := 0, 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		u := strings.TrimSpace(sc.Text())
		if u == "" {
			continue
		}

		total++
		canon := p.ProcessURL(u)
		if seen != nil {
			if _, ok := seen[canon]; ok {
				logger.Debug("skipping duplicate", "url", u, "canonical", canon)

				continue
			}

			seen[canon] = struct{}{}
		}

		_, err = fmt.Fprintln(w, canon)
		if err != nil {
			return fmt.Errorf("writing url: %w", err)
		}

		written++
	}

	err = sc.Err()
	if err != nil {
		return fmt.Errorf("reading urls: %w", err)
	}

	logger.Debug("processed urls", "total", total, "written", written)

	return nil
}
