package main

import (
	"bytes"
	"context"
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/absfs/smbclient"
	"github.com/absfs/smbclient/netbios"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	engine  *smbclient.MockEngine
	app     *app
	logs    *bytes.Buffer
	engines int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, key := range []string{"SMBCTL_SERVER", "SMBCTL_USER", "SMBCTL_PASSWORD", "SMBCTL_SHARE", "SMBCTL_URL", "SMBCTL_DOMAIN"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	h := &harness{engine: smbclient.NewMockEngine(), logs: &bytes.Buffer{}}
	h.app = newApp(h.logs)
	h.app.retry = &smbclient.RetryPolicy{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	h.app.newEngine = func(cfg *smbclient.Config) smbclient.Engine {
		h.engines++
		return h.engine
	}
	return h
}

// run executes smbctl with args against the mock engine.
func (h *harness) run(stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(h.app)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) runOn(args ...string) (string, error) {
	return h.run("", append([]string{"--server", "10.0.0.1", "--user", "tester", "--password", "pw"}, args...)...)
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestNTHashCommand(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "nthash", "password")
	require.NoError(t, err)
	assert.Equal(t, "8846f7eaee8fb117ad06bdd830b7586c\n", out)

	out, err = h.run("password\n", "nthash")
	require.NoError(t, err)
	assert.Equal(t, "8846f7eaee8fb117ad06bdd830b7586c\n", out)
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("", "version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
	assert.Contains(t, out, GitCommit)
}

func TestResolveCommand(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("", "resolve", "10.0.0.9")
	require.NoError(t, err)
	assert.Contains(t, out, "10.0.0.9")
	assert.Contains(t, out, "literal")
}

func TestSharesCommand(t *testing.T) {
	h := newHarness(t)
	h.engine.AddShare("IPC$")
	h.engine.AddShare("C$")

	out, err := h.runOn("shares")
	require.NoError(t, err)
	assert.Contains(t, out, "testshare")
	assert.Contains(t, out, "IPC$")
	assert.Contains(t, out, "Special")
	assert.Zero(t, h.engine.LiveSessions(), "session must be disconnected")
}

func populate(engine *smbclient.MockEngine) {
	engine.AddFile("testshare", `docs\readme.txt`, []byte("read me"))
	engine.AddFile("testshare", `docs\sub\deep.txt`, []byte("deep"))
	engine.AddFile("testshare", `docs\sub\img.png`, []byte{0x89, 'P', 'N', 'G'})
	engine.AddFile("testshare", "top.txt", []byte("top"))
}

func TestLsCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "one level",
			args: []string{"ls", "testshare/docs"},
			want: []string{`docs\readme.txt`, `docs\sub\`},
		},
		{
			name: "recursive",
			args: []string{"ls", "-r", "testshare/docs"},
			want: []string{`docs\readme.txt`, `docs\sub\deep.txt`, `docs\sub\img.png`, `docs\sub\`},
		},
		{
			name: "recursive with match",
			args: []string{"ls", "-r", "--match", `\.png$`, "testshare"},
			want: []string{`docs\sub\img.png`, `docs\sub\`, `docs\`},
		},
		{
			name: "depth",
			args: []string{"ls", "-r", "--depth", "2", "testshare"},
			want: []string{`docs\readme.txt`, `docs\sub\`, `docs\`, `top.txt`},
		},
		{
			name: "dir match",
			args: []string{"ls", "-r", "--dir-match", `^docs$`, `testshare\`},
			want: []string{`docs\readme.txt`, `docs\`, `top.txt`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			populate(h.engine)
			out, err := h.runOn(tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lines(out))
		})
	}
}

func TestLsCommand_Long(t *testing.T) {
	h := newHarness(t)
	populate(h.engine)
	out, err := h.runOn("ls", "-l", "testshare/docs")
	require.NoError(t, err)
	assert.Contains(t, out, "PATH")
	assert.Contains(t, out, `docs\readme.txt`)
	assert.Contains(t, out, "7")
}

func TestLsCommand_BadPattern(t *testing.T) {
	h := newHarness(t)
	_, err := h.runOn("ls", "--match", "(", "testshare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestTransferCommands(t *testing.T) {
	h := newHarness(t)
	populate(h.engine)
	dir := t.TempDir()

	out, err := h.runOn("cat", "testshare/docs/readme.txt")
	require.NoError(t, err)
	assert.Equal(t, "read me", out)

	local := filepath.Join(dir, "readme.txt")
	_, err = h.runOn("get", "testshare/docs/readme.txt", local)
	require.NoError(t, err)
	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "read me", string(data))

	upload := filepath.Join(dir, "up.txt")
	require.NoError(t, os.WriteFile(upload, []byte("uploaded"), 0o644))
	_, err = h.runOn("put", upload, "testshare/docs/up.txt")
	require.NoError(t, err)
	got, ok := h.engine.GetFile("testshare", `docs\up.txt`)
	require.True(t, ok)
	assert.Equal(t, "uploaded", string(got))

	_, err = h.runOn("cp", "testshare/docs/up.txt", "testshare/copy.txt")
	require.NoError(t, err)
	got, ok = h.engine.GetFile("testshare", "copy.txt")
	require.True(t, ok)
	assert.Equal(t, "uploaded", string(got))

	assert.Zero(t, h.engine.OpenHandles())
	assert.Zero(t, h.engine.LiveSessions())
}

func TestCpCommand_AcrossShares(t *testing.T) {
	h := newHarness(t)
	_, err := h.runOn("cp", "testshare/a", "other/b")
	require.Error(t, err)
	assert.Zero(t, h.engines, "no connection for an invalid copy")
}

func TestCatCommand_Missing(t *testing.T) {
	h := newHarness(t)
	_, err := h.runOn("cat", "testshare/missing.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, smbclient.ErrFileOpen)
}

func TestDirectoryCommands(t *testing.T) {
	h := newHarness(t)
	populate(h.engine)

	_, err := h.runOn("mkdir", "testshare/newdir")
	require.NoError(t, err)
	assert.True(t, h.engine.FileExists("testshare", "newdir"))

	_, err = h.runOn("rm", "testshare/top.txt", "testshare/docs/readme.txt")
	require.NoError(t, err)
	assert.False(t, h.engine.FileExists("testshare", "top.txt"))
	assert.False(t, h.engine.FileExists("testshare", `docs\readme.txt`))

	_, err = h.runOn("rmdir", "testshare/docs")
	require.Error(t, err, "non-empty directory without -r")
	assert.True(t, h.engine.FileExists("testshare", "docs"))

	_, err = h.runOn("rmdir", "-r", "testshare/docs")
	require.NoError(t, err)
	assert.False(t, h.engine.FileExists("testshare", "docs"))

	_, err = h.runOn("rmdir", "testshare/newdir")
	require.NoError(t, err)
}

func TestConnect_RetriesTransientFailures(t *testing.T) {
	h := newHarness(t)
	h.engine.SetOperationError("connect", errors.New("connection refused"))
	next := h.app.newEngine
	h.app.newEngine = func(cfg *smbclient.Config) smbclient.Engine {
		if h.engines == 2 {
			h.engine.ClearErrors()
		}
		return next(cfg)
	}

	_, err := h.runOn("--retries", "3", "shares")
	require.NoError(t, err)
	assert.Equal(t, 3, h.engines)
	assert.Equal(t, 3, h.engine.SessionsCreated())
}

type countingNetBIOS struct {
	calls int
}

func (n *countingNetBIOS) Resolve(ctx context.Context, name string, t netbios.NameType) (netip.Addr, error) {
	n.calls++
	return netip.MustParseAddr("10.0.0.7"), nil
}

func TestConnect_RetriesShareResolver(t *testing.T) {
	h := newHarness(t)
	nb := &countingNetBIOS{}
	builds := 0
	h.app.newResolver = func(cfg *smbclient.Config) *smbclient.AddressResolver {
		builds++
		r := smbclient.NewAddressResolver(cfg)
		r.NetBIOS = nb
		return r
	}
	h.engine.SetOperationError("connect", errors.New("connection refused"))
	next := h.app.newEngine
	h.app.newEngine = func(cfg *smbclient.Config) smbclient.Engine {
		if h.engines == 2 {
			h.engine.ClearErrors()
		}
		return next(cfg)
	}

	_, err := h.run("", "--server", "FILESRV", "--user", "tester", "--password", "pw", "--retries", "3", "shares")
	require.NoError(t, err)
	assert.Equal(t, 3, h.engines)
	assert.Equal(t, 1, builds, "one resolver for every attempt")
	assert.Equal(t, 1, nb.calls, "later attempts use the cached address")
}

func TestConnect_AuthFailureNotRetried(t *testing.T) {
	h := newHarness(t)
	h.engine.AddUser("alice", "secret")

	_, err := h.runOn("--retries", "5", "shares")
	require.Error(t, err)
	assert.ErrorIs(t, err, smbclient.ErrAuth)
	assert.Equal(t, 1, h.engines)
}

func TestConnect_NoServer(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "shares")
	require.Error(t, err)
	assert.ErrorIs(t, err, smbclient.ErrInvalidConfig)
}

func TestConfigSources(t *testing.T) {
	t.Run("environment", func(t *testing.T) {
		h := newHarness(t)
		populate(h.engine)
		t.Setenv("SMBCTL_SERVER", "10.0.0.1")
		t.Setenv("SMBCTL_SHARE", "testshare")

		out, err := h.run("", "cat", "top.txt")
		require.NoError(t, err)
		assert.Equal(t, "top", out)
	})

	t.Run("connection string", func(t *testing.T) {
		h := newHarness(t)
		populate(h.engine)

		out, err := h.run("", "--url", "smb://CORP;tester:pw@10.0.0.1/testshare", "cat", "docs/sub/deep.txt")
		require.NoError(t, err)
		assert.Equal(t, "deep", out)
	})

	t.Run("config file", func(t *testing.T) {
		h := newHarness(t)
		populate(h.engine)
		dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "smbctl")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
			[]byte("server: 10.0.0.1\nuser: tester\nshare: testshare\n"), 0o600))

		out, err := h.run("", "cat", "top.txt")
		require.NoError(t, err)
		assert.Equal(t, "top", out)
	})

	t.Run("explicit config file", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.run("", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "shares")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can't read config")
	})
}

func TestSplitRemote(t *testing.T) {
	h := newHarness(t)

	share, p, err := h.app.splitRemote(`/data/dir/file.txt`)
	require.NoError(t, err)
	assert.Equal(t, "data", share)
	assert.Equal(t, "dir/file.txt", p)

	share, p, err = h.app.splitRemote(`data\dir`)
	require.NoError(t, err)
	assert.Equal(t, "data", share)
	assert.Equal(t, "dir", p)

	_, _, err = h.app.splitRemote("/")
	assert.ErrorIs(t, err, smbclient.ErrInvalidPath)

	h.app.v.Set("share", "fixed")
	share, p, err = h.app.splitRemote("dir/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "fixed", share)
	assert.Equal(t, "dir/file.txt", p)
}
