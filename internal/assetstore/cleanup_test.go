package assetstore_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/company-management/internal/assetstore"
)

func TestAssetStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AssetStore Suite")
}

type fakeDeleter struct {
	mu      sync.Mutex
	deleted []string
	errs    map[string]error
}

func newFakeDeleter() *fakeDeleter {
	return &fakeDeleter{errs: make(map[string]error)}
}

func (f *fakeDeleter) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[key]; ok {
		return err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeDeleter) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

var _ = Describe("CleanupPool", func() {
	var (
		store  *fakeDeleter
		pool   *assetstore.CleanupPool
		logger *slog.Logger
	)

	BeforeEach(func() {
		store = newFakeDeleter()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		pool = assetstore.NewCleanupPool(store, assetstore.CleanupConfig{MaxWorkers: 2, JobQueueSize: 10}, logger)
	})

	AfterEach(func() {
		pool.Shutdown()
	})

	It("deletes enqueued assets in the background", func() {
		pool.Enqueue("companies/1/logo-a", "replaced")
		pool.Enqueue("companies/2/logo-b", "company deleted")

		Eventually(store.deletedKeys).Should(ConsistOf(
			"companies/1/logo-a",
			"companies/2/logo-b",
		))
	})

	It("ignores empty keys", func() {
		pool.Enqueue("", "replaced")
		Consistently(store.deletedKeys).Should(BeEmpty())
	})

	It("swallows not-found deletions as idempotent", func() {
		store.errs["gone"] = assetstore.ErrNotFound

		pool.Enqueue("gone", "replaced")
		pool.Enqueue("companies/3/logo-c", "replaced")

		Eventually(store.deletedKeys).Should(ConsistOf("companies/3/logo-c"))
	})

	It("logs and moves on when a deletion fails", func() {
		store.errs["bad"] = errors.New("connection reset")

		pool.Enqueue("bad", "replaced")
		pool.Enqueue("companies/4/logo-d", "replaced")

		Eventually(store.deletedKeys).Should(ConsistOf("companies/4/logo-d"))
	})
})
