package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRulesPath is the path to the rule list used in tests.
const testRulesPath = "../testdata/rules.json"

// testInput is the list of URLs used in tests.
const testInput = "http://foo.example/?foo=1&bbn=1&PHPSESSIONID=1\n" +
	"\n" +
	"  http://foo.example/?foo=1&bbn=1&PHPSESSIONID=2  \n" +
	"http://bar.example/?bbn=1&PHPSESSIONID=3\n"

func TestRun(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		want   string
		unique bool
	}{{
		name: "all",
		want: "http://foo.example/?foo=1&bbn=1\n" +
			"http://foo.example/?foo=1&bbn=1\n" +
			"http://bar.example/\n",
		unique: false,
	}, {
		name: "unique",
		want: "http://foo.example/?foo=1&bbn=1\n" +
			"http://bar.example/\n",
		unique: true,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
			err := run(Options{
				RuleLists: []string{testRulesPath},
				Unique:    tc.unique,
			}, strings.NewReader(testInput), stdout, stderr)
			require.NoError(t, err)

			assert.Equal(t, tc.want, stdout.String())
			assert.Contains(t, stderr.String(), "Loaded 2 rules, skipped 0 duplicates.")
		})
	}
}

func TestRun_files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "urls.txt")
	logPath := filepath.Join(dir, "urldedup.log")

	err := os.WriteFile(inputPath, []byte(testInput), 0o600)
	require.NoError(t, err)

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	err = run(Options{
		Verbose:   true,
		LogOutput: logPath,
		RuleLists: []string{testRulesPath, testRulesPath},
		Input:     inputPath,
		Unique:    true,
	}, strings.NewReader(""), stdout, stderr)
	require.NoError(t, err)

	assert.Equal(t, "http://foo.example/?foo=1&bbn=1\nhttp://bar.example/\n", stdout.String())
	assert.Empty(t, stderr.String())

	logged, err := os.ReadFile(logPath)
	require.NoError(t, err)

	assert.Contains(t, string(logged), "Loaded 2 rules, skipped 2 duplicates.")
	assert.Contains(t, string(logged), "skipping duplicate")
}

func TestRun_errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	badRulesPath := filepath.Join(dir, "bad.json")
	err := os.WriteFile(badRulesPath, []byte(`[{"policy": "unknown", "args": []}]`), 0o600)
	require.NoError(t, err)

	testCases := []struct {
		name       string
		wantErrMsg string
		options    Options
	}{{
		name:       "no_rules_file",
		wantErrMsg: "none.json",
		options: Options{
			RuleLists: []string{testRulesPath, filepath.Join(dir, "none.json")},
		},
	}, {
		name:       "unknown_policy",
		wantErrMsg: "no policy named unknown",
		options: Options{
			RuleLists: []string{badRulesPath},
		},
	}, {
		name:       "no_input_file",
		wantErrMsg: "opening input",
		options: Options{
			RuleLists: []string{testRulesPath},
			Input:     filepath.Join(dir, "none.txt"),
		},
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			stdout := &bytes.Buffer{}
			runErr := run(tc.options, strings.NewReader(testInput), stdout, &bytes.Buffer{})
			require.Error(t, runErr)

			assert.Contains(t, runErr.Error(), tc.wantErrMsg)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestNewProcessor_noRules(t *testing.T) {
	t.Parallel()

	p, err := newProcessor(slogutil.NewDiscardLogger(), nil)
	require.NoError(t, err)

	const u = "http://foo.example/?PHPSESSIONID=1"
	assert.Equal(t, u, p.ProcessURL(u))
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{{
		name:      "verbose",
		verbose:   true,
		wantDebug: true,
	}, {
		name:      "quiet",
		verbose:   false,
		wantDebug: false,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			l := newLogger(buf, tc.verbose)
			l.Debug("debug message")
			l.Info("info message")

			out := buf.String()
			assert.Contains(t, out, "info message")
			if tc.wantDebug {
				assert.Contains(t, out, "debug message")
			} else {
				assert.NotContains(t, out, "debug message")
			}
		})
	}
}
