//go:build integration
// +build integration

package smbclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// getTestConfig returns a configuration for integration tests.
func getTestConfig(t *testing.T) *Config {
	t.Helper()

	return &Config{
		Server:   getEnvOrDefault("SMB_SERVER", "localhost"),
		Share:    getEnvOrDefault("SMB_SHARE", "testshare"),
		Username: getEnvOrDefault("SMB_USERNAME", "testuser"),
		Password: getEnvOrDefault("SMB_PASSWORD", "testpass123"),
		Domain:   getEnvOrDefault("SMB_DOMAIN", "TESTGROUP"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// setupTestShare connects to the configured server and share and gives
// each test its own scratch directory.
func setupTestShare(t *testing.T) (*Share, string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	config := getTestConfig(t)
	sess, err := NewSession(config)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if err := sess.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	sh, err := sess.ConnectToSharedFolder(ctx, config.Share)
	if err != nil {
		sess.Disconnect(ctx)
		t.Fatalf("Failed to attach share: %v", err)
	}

	dir := fmt.Sprintf("it_%d", time.Now().UnixNano())
	if err := sh.CreateDirectory(ctx, dir); err != nil {
		sess.Disconnect(ctx)
		t.Fatalf("Failed to create scratch directory: %v", err)
	}

	t.Cleanup(func() {
		ctx := context.Background()
		sh.RemoveDirectory(ctx, dir)
		sess.Disconnect(ctx)
	})
	return sh, dir
}

func TestIntegration_ListShares(t *testing.T) {
	ctx := context.Background()
	config := getTestConfig(t)
	sess, err := NewSession(config)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer sess.Disconnect(ctx)
	if err := sess.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	names, err := sess.ListSharedFolders(ctx)
	if err != nil {
		t.Fatalf("ListSharedFolders() error = %v", err)
	}
	found := false
	for _, n := range names {
		if normalizeShareName(n) == normalizeShareName(config.Share) {
			found = true
		}
	}
	if !found {
		t.Errorf("share %q not in %v", config.Share, names)
	}
}

func TestIntegration_BadPassword(t *testing.T) {
	config := getTestConfig(t)
	config.Password = "definitely-wrong"
	sess, err := NewSession(config)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	err = sess.Connect(context.Background())
	if !errors.Is(err, ErrAuth) {
		t.Errorf("Connect() error = %v, want ErrAuth", err)
	}
}

func TestIntegration_ContentRoundTrip(t *testing.T) {
	sh, dir := setupTestShare(t)
	ctx := context.Background()

	for _, size := range []int{0, 1, 65471, 65535, 1 << 20} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			p := fmt.Sprintf(`%s\f_%d.bin`, dir, size)
			data := patterned(size)
			if err := sh.WriteFileContent(ctx, p, data); err != nil {
				t.Fatalf("WriteFileContent() error = %v", err)
			}
			got, err := sh.GetFileContent(ctx, p)
			if err != nil {
				t.Fatalf("GetFileContent() error = %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("content mismatch for %d bytes", size)
			}
		})
	}
}

func TestIntegration_TreeOperations(t *testing.T) {
	sh, dir := setupTestShare(t)
	ctx := context.Background()

	if err := sh.CreateDirectory(ctx, dir+`\a`); err != nil {
		t.Fatalf("CreateDirectory() error = %v", err)
	}
	if err := sh.CreateDirectory(ctx, dir+`\a\b`); err != nil {
		t.Fatalf("CreateDirectory() error = %v", err)
	}
	sh.WriteFileContent(ctx, dir+`\a\f2`, []byte("2"))
	sh.WriteFileContent(ctx, dir+`\a\b\f1`, []byte("1"))

	entries, err := sh.ListFilesRecursively(ctx, dir, nil, nil, DepthUnlimited)
	if err != nil {
		t.Fatalf("ListFilesRecursively() error = %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("ListFilesRecursively() = %v", Paths(entries))
	}

	if err := sh.RemoveDirectory(ctx, dir+`\a`); err != nil {
		t.Fatalf("RemoveDirectory() error = %v", err)
	}
	if _, err := sh.Stat(ctx, dir+`\a`); err == nil {
		t.Error("directory still exists after RemoveDirectory()")
	}
}

func TestIntegration_CopyHelpers(t *testing.T) {
	sh, dir := setupTestShare(t)
	ctx := context.Background()

	local := filepath.Join(t.TempDir(), "src.bin")
	data := patterned(300000)
	if err := os.WriteFile(local, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := sh.CopyLocalFileToRemote(ctx, local, dir+`\up.bin`); err != nil {
		t.Fatalf("CopyLocalFileToRemote() error = %v", err)
	}
	if _, err := sh.CopyRemoteFileToRemote(ctx, dir+`\up.bin`, dir+`\dup.bin`); err != nil {
		t.Fatalf("CopyRemoteFileToRemote() error = %v", err)
	}
	back := filepath.Join(t.TempDir(), "back.bin")
	if _, err := sh.CopyRemoteFileToLocal(ctx, dir+`\dup.bin`, back); err != nil {
		t.Fatalf("CopyRemoteFileToLocal() error = %v", err)
	}
	got, _ := os.ReadFile(back)
	if !bytes.Equal(got, data) {
		t.Error("content changed across copies")
	}
}
