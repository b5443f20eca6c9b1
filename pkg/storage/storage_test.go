package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/sgmr/pkg/lifecycle"
	"github.com/JaimeStill/sgmr/pkg/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func backends(t *testing.T) map[string]storage.System {
	t.Helper()

	file, err := storage.NewFile(filepath.Join(t.TempDir(), "cases"), discard())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	sqlite, err := storage.NewSQLite(filepath.Join(t.TempDir(), "data", "sgmr.db"), discard())
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}

	lc := lifecycle.New()
	if err := sqlite.Start(lc); err != nil {
		t.Fatalf("Start: %v", err)
	}
	lc.WaitForStartup()
	t.Cleanup(func() { lc.Shutdown(time.Second) })

	systems := map[string]storage.System{
		"file":   file,
		"sqlite": sqlite,
	}

	if addr := os.Getenv("SGMR_TEST_REDIS_ADDR"); addr != "" {
		systems["redis"] = storage.NewRedis(&storage.RedisConfig{
			Addr:   addr,
			Prefix: "sgmr-test:" + t.Name() + ":",
		}, discard())
	}

	return systems
}

func TestCreateThenGet(t *testing.T) {
	for name, sys := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			data := []byte(`{"id":"ab12cd34"}`)

			if err := sys.Create(ctx, "cases/ab12cd34.json", data); err != nil {
				t.Fatalf("Create: %v", err)
			}

			got, err := sys.Get(ctx, "cases/ab12cd34.json")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("Get = %s, want %s", got, data)
			}

			ok, err := sys.Exists(ctx, "cases/ab12cd34.json")
			if err != nil || !ok {
				t.Errorf("Exists = %v, %v; want true, nil", ok, err)
			}
		})
	}
}

func TestCreateNeverOverwrites(t *testing.T) {
	for name, sys := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := sys.Create(ctx, "reviews/ab12cd34.json", []byte("first")); err != nil {
				t.Fatalf("Create: %v", err)
			}

			err := sys.Create(ctx, "reviews/ab12cd34.json", []byte("second"))
			if !errors.Is(err, storage.ErrExists) {
				t.Fatalf("second Create: got %v, want ErrExists", err)
			}

			got, err := sys.Get(ctx, "reviews/ab12cd34.json")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != "first" {
				t.Errorf("record overwritten: got %q, want first", got)
			}
		})
	}
}

func TestGetMissing(t *testing.T) {
	for name, sys := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := sys.Get(ctx, "cases/00000000.json"); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("Get: got %v, want ErrNotFound", err)
			}

			ok, err := sys.Exists(ctx, "cases/00000000.json")
			if err != nil || ok {
				t.Errorf("Exists = %v, %v; want false, nil", ok, err)
			}
		})
	}
}

func TestInvalidKeys(t *testing.T) {
	keys := map[string]error{
		"":                storage.ErrEmptyKey,
		"../escape.json":  storage.ErrInvalidKey,
		"/abs.json":       storage.ErrInvalidKey,
		"cases//x.json":   storage.ErrInvalidKey,
		"cases\\x.json":   storage.ErrInvalidKey,
		"cases/./x.json":  storage.ErrInvalidKey,
		"cases/../x.json": storage.ErrInvalidKey,
	}

	for name, sys := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for key, want := range keys {
				if err := sys.Create(context.Background(), key, []byte("x")); !errors.Is(err, want) {
					t.Errorf("Create(%q): got %v, want %v", key, err, want)
				}
			}
		})
	}
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	for name, sys := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var (
				g       errgroup.Group
				winners atomic.Int32
			)

			for i := range 16 {
				g.Go(func() error {
					err := sys.Create(context.Background(), "cases/race.json", []byte{byte('a' + i)})
					switch {
					case err == nil:
						winners.Add(1)
						return nil
					case errors.Is(err, storage.ErrExists):
						return nil
					default:
						return err
					}
				})
			}

			if err := g.Wait(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := winners.Load(); got != 1 {
				t.Errorf("winners = %d, want exactly 1", got)
			}
		})
	}
}

func TestFileLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	sys, err := storage.NewFile(dir, discard())
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	sys.Create(ctx, "cases/a.json", []byte("a"))
	sys.Create(ctx, "cases/a.json", []byte("b"))

	entries, err := os.ReadDir(filepath.Join(dir, "cases"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory contents = %v, want [a.json]", names)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{storage.ErrExists, http.StatusConflict},
		{storage.ErrEmptyKey, http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
