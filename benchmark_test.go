package smbclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"
)

func setupBenchShare(b *testing.B) (*Share, *MockEngine) {
	b.Helper()
	engine := NewMockEngine()
	resolver, _, _ := failingResolver()
	sess, err := NewSessionWithEngine(testConfig(), engine, resolver)
	if err != nil {
		b.Fatalf("NewSessionWithEngine() error = %v", err)
	}
	ctx := context.Background()
	if err := sess.Connect(ctx); err != nil {
		b.Fatalf("Connect() error = %v", err)
	}
	sh, err := sess.ConnectToSharedFolder(ctx, "testshare")
	if err != nil {
		b.Fatalf("ConnectToSharedFolder() error = %v", err)
	}
	b.Cleanup(func() { sess.Disconnect(ctx) })
	return sh, engine
}

func benchmarkWrite(b *testing.B, size int) {
	sh, _ := setupBenchShare(b)
	ctx := context.Background()
	data := bytes.Repeat([]byte("x"), size)

	b.ResetTimer()
	b.SetBytes(int64(size))
	for i := 0; i < b.N; i++ {
		if err := sh.WriteFileContent(ctx, "bench.bin", data); err != nil {
			b.Fatalf("WriteFileContent() error = %v", err)
		}
	}
}

func benchmarkRead(b *testing.B, size int) {
	sh, engine := setupBenchShare(b)
	ctx := context.Background()
	engine.AddFile("testshare", "bench.bin", bytes.Repeat([]byte("x"), size))

	b.ResetTimer()
	b.SetBytes(int64(size))
	for i := 0; i < b.N; i++ {
		if _, err := sh.ReadFileTo(ctx, "bench.bin", io.Discard); err != nil {
			b.Fatalf("ReadFileTo() error = %v", err)
		}
	}
}

// BenchmarkSmallFileWrite measures writing small files (1KB).
func BenchmarkSmallFileWrite(b *testing.B) { benchmarkWrite(b, 1024) }

// BenchmarkLargeFileWrite measures writing files that span many chunks (4MB).
func BenchmarkLargeFileWrite(b *testing.B) { benchmarkWrite(b, 4<<20) }

// BenchmarkSmallFileRead measures reading small files (1KB).
func BenchmarkSmallFileRead(b *testing.B) { benchmarkRead(b, 1024) }

// BenchmarkLargeFileRead measures reading files that span many chunks (4MB).
func BenchmarkLargeFileRead(b *testing.B) { benchmarkRead(b, 4<<20) }

// BenchmarkListRecursive measures traversing a tree of 10 directories with
// 20 files each.
func BenchmarkListRecursive(b *testing.B) {
	sh, engine := setupBenchShare(b)
	ctx := context.Background()
	for d := 0; d < 10; d++ {
		for f := 0; f < 20; f++ {
			engine.AddFile("testshare", fmt.Sprintf(`tree\d%02d\f%02d.txt`, d, f), []byte("x"))
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		entries, err := sh.ListFilesRecursively(ctx, "tree", nil, nil, DepthUnlimited)
		if err != nil {
			b.Fatalf("ListFilesRecursively() error = %v", err)
		}
		if len(entries) != 210 {
			b.Fatalf("ListFilesRecursively() returned %d entries", len(entries))
		}
	}
}

// BenchmarkResolveCached measures resolution hits in the cache.
func BenchmarkResolveCached(b *testing.B) {
	resolver := &AddressResolver{
		DNS:   &stubDNS{addrs: map[string][]string{"fs1.corp": {"10.0.0.7"}}},
		cache: newResolutionCache(time.Hour, 0),
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := resolver.Resolve(ctx, "fs1.corp", ""); err != nil {
			b.Fatalf("Resolve() error = %v", err)
		}
	}
}
