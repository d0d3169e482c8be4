package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ptrskay3/pysprint-cli/internal/audit"
	"github.com/Ptrskay3/pysprint-cli/internal/config"
	"github.com/Ptrskay3/pysprint-cli/internal/console"
	"github.com/Ptrskay3/pysprint-cli/internal/executor"
)

type fakeRuntime struct {
	handshakeErr error
	handshakes   int
	fail         map[string]bool
	names        []string
}

func (f *fakeRuntime) Run(_ context.Context, name, _ string) executor.Outcome {
	f.names = append(f.names, name)
	if f.fail[name] {
		return executor.Outcome{ExitCode: 1, Traceback: "ValueError: bad"}
	}
	return executor.Outcome{Success: true}
}

func (f *fakeRuntime) Handshake(context.Context) error {
	f.handshakes++
	return f.handshakeErr
}

// withGlobals resets the flag variables and swaps the runtime for one test.
func withGlobals(t *testing.T, rt *fakeRuntime) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	logger = zap.NewNop()
	con = console.New(&out)
	configFile, resultFile = config.DefaultFileName, "results.json"
	persist, override, verbosity, initMethod = false, false, 0, "fft"

	orig := newRuntime
	newRuntime = func(string) scriptRuntime { return rt }
	t.Cleanup(func() { newRuntime = orig })
	return &out
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("1;2\n"), 0644))
	}
}

func TestInitCmd(t *testing.T) {
	withGlobals(t, &fakeRuntime{})
	dir := t.TempDir()
	initMethod = "wft"

	require.NoError(t, runInit(&cobra.Command{}, []string{dir}))
	cfg, err := config.Load(filepath.Join(dir, config.DefaultFileName))
	require.NoError(t, err)
	assert.Equal(t, config.WFTMethod, cfg.Method)

	err = runInit(&cobra.Command{}, []string{dir})
	assert.ErrorIs(t, err, config.ErrConfigExists)

	override = true
	assert.NoError(t, runInit(&cobra.Command{}, []string{dir}))

	initMethod = "nope"
	var verr *config.ValidationError
	assert.True(t, errors.As(runInit(&cobra.Command{}, []string{dir}), &verr))
}

func TestAuditCmd_OneFailure(t *testing.T) {
	rt := &fakeRuntime{fail: map[string]bool{"a4": true}}
	out := withGlobals(t, rt)
	dir := t.TempDir()
	// The default config groups by triples and evaluates the interferograms only.
	_, err := config.WriteDefault(dir, "fft", false)
	require.NoError(t, err)
	writeFiles(t, dir, "a1.trt", "a2.trt", "a3.trt", "a4.trt", "a5.trt", "a6.txt", "x_randomfile.trt", "my_file_to_skip.txt")

	require.NoError(t, runAudit(&cobra.Command{}, []string{dir}))

	assert.Equal(t, []string{"a1", "a4"}, rt.names)
	data, err := os.ReadFile(filepath.Join(dir, audit.ReportFileName))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))

	store, err := os.ReadFile(filepath.Join(dir, "results.json"))
	require.NoError(t, err)
	assert.Equal(t, "{ }", string(store))
	assert.Contains(t, out.String(), "Done. 2 evaluated, 1 failed.")
}

func TestAuditCmd_MissingConfig(t *testing.T) {
	withGlobals(t, &fakeRuntime{})
	dir := t.TempDir()

	err := runAudit(&cobra.Command{}, []string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pysprint init")
}

func TestAuditCmd_HandshakeFailure(t *testing.T) {
	rt := &fakeRuntime{handshakeErr: errors.New("runtime \"python\" is not usable (is pysprint installed?)")}
	withGlobals(t, rt)
	dir := t.TempDir()
	_, err := config.WriteDefault(dir, "fft", false)
	require.NoError(t, err)

	err = runAudit(&cobra.Command{}, []string{dir})
	assert.ErrorContains(t, err, "is pysprint installed?")
	assert.Empty(t, rt.names)
}

func TestAuditCmd_KeepsExistingStore(t *testing.T) {
	withGlobals(t, &fakeRuntime{})
	dir := t.TempDir()
	_, err := config.WriteDefault(dir, "fft", false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "results.json"), []byte(`{"old.trt": {}}`), 0644))

	require.NoError(t, runAudit(&cobra.Command{}, []string{dir}))
	data, _ := os.ReadFile(filepath.Join(dir, "results.json"))
	assert.Equal(t, `{"old.trt": {}}`, string(data))

	override = true
	require.NoError(t, runAudit(&cobra.Command{}, []string{dir}))
	data, _ = os.ReadFile(filepath.Join(dir, "results.json"))
	assert.Equal(t, "{ }", string(data))
}

func TestWatchCmd_AggregateRejected(t *testing.T) {
	rt := &fakeRuntime{}
	out := withGlobals(t, rt)
	dir := t.TempDir()
	_, err := config.WriteDefault(dir, "spp", false)
	require.NoError(t, err)

	err = runWatch(&cobra.Command{}, []string{dir})
	var verr *config.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, []string{"method"}, verr.Keys())

	// Nothing is touched before the method is rejected.
	assert.Zero(t, rt.handshakes)
	_, err = os.Stat(filepath.Join(dir, "results.json"))
	assert.True(t, os.IsNotExist(err))
	assert.NotContains(t, out.String(), "Watch started")
}

func TestSummarizeCmd(t *testing.T) {
	withGlobals(t, &fakeRuntime{})
	resultFile = filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(resultFile, []byte(`{"f1.dat": {"GD": "120.5", "GDD": 30, "method": "WFTMethod"}}`), 0644))

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, runSummarize(cmd, nil))

	assert.True(t, strings.HasPrefix(out.String(), "1 entries found.\nmethod: WFTMethod\n"))
	assert.Contains(t, out.String(), "GD ranging from 120.50000 to 120.50000 fs")
}

func TestScriptVerbosity(t *testing.T) {
	withGlobals(t, &fakeRuntime{})
	for v, want := range map[int]int{0: 0, 1: 1, 3: 1} {
		verbosity = v
		assert.Equal(t, want, scriptVerbosity())
	}
}

func TestRootCommandWiring(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"audit", "watch", "summarize", "init"} {
		assert.True(t, names[want], "missing command %s", want)
	}
	assert.NotNil(t, auditCmd.Flags().Lookup("persist"))
	assert.NotNil(t, watchCmd.Flags().Lookup("override"))
	assert.NotNil(t, rootCmd.PersistentFlags().ShorthandLookup("v"))
}
