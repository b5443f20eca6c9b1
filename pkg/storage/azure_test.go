package storage_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/JaimeStill/sgmr/pkg/storage"
)

// Well-known development storage account key.
const devAccountKey = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="

// blobServer accepts the first PUT for each path and answers later ones
// with the configured status and error code.
type blobServer struct {
	mu       sync.Mutex
	blobs    map[string]bool
	status   int
	code     string
	noneHdrs []string
}

func (b *blobServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	b.noneHdrs = append(b.noneHdrs, r.Header.Get("If-None-Match"))
	if b.blobs[r.URL.Path] {
		w.Header().Set("x-ms-error-code", b.code)
		w.WriteHeader(b.status)
		return
	}
	b.blobs[r.URL.Path] = true
	w.Header().Set("ETag", `"0x8D0000000000001"`)
	w.WriteHeader(http.StatusCreated)
}

func newAzure(t *testing.T, status int, code string) (storage.System, *blobServer) {
	t.Helper()

	fake := &blobServer{blobs: map[string]bool{}, status: status, code: code}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	conn := "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=" + devAccountKey +
		";BlobEndpoint=" + srv.URL + "/devstoreaccount1;"

	sys, err := storage.NewAzure(&storage.AzureConfig{
		ContainerName:    "sgmr",
		ConnectionString: conn,
	}, discard())
	if err != nil {
		t.Fatalf("NewAzure: %v", err)
	}
	return sys, fake
}

func TestAzureCreateNeverOverwrites(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
	}{
		{"blob already exists", http.StatusConflict, "BlobAlreadyExists"},
		{"condition not met", http.StatusPreconditionFailed, "ConditionNotMet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, fake := newAzure(t, tt.status, tt.code)
			ctx := context.Background()

			if err := sys.Create(ctx, "reviews/ab12cd34.json", []byte("first")); err != nil {
				t.Fatalf("Create: %v", err)
			}

			err := sys.Create(ctx, "reviews/ab12cd34.json", []byte("second"))
			if !errors.Is(err, storage.ErrExists) {
				t.Fatalf("second Create: got %v, want ErrExists", err)
			}

			for i, h := range fake.noneHdrs {
				if h != "*" {
					t.Errorf("upload %d: If-None-Match = %q, want *", i, h)
				}
			}
		})
	}
}

func TestAzureCreateOtherFailure(t *testing.T) {
	sys, _ := newAzure(t, http.StatusForbidden, "AuthorizationFailure")
	ctx := context.Background()

	if err := sys.Create(ctx, "cases/ab12cd34.json", []byte("x")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := sys.Create(ctx, "cases/ab12cd34.json", []byte("y"))
	if err == nil || errors.Is(err, storage.ErrExists) {
		t.Errorf("got %v, want a non-ErrExists failure", err)
	}
}
