// Command bufferpool-smoketest pins more pages than frames exist so a
// replacement strategy is forced to choose a victim, then reports the
// final frame contents, dirty flags, and IO counters.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tuannm99/novasql/internal/bufferpool"
	"github.com/tuannm99/novasql/internal/bufferpool/replacement"
	"github.com/tuannm99/novasql/internal/storage"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	path := filepath.Join(os.TempDir(), "novasql-bufferpool-smoketest.db")
	_ = os.Remove(path)

	if err := storage.CreatePageFile(path); err != nil {
		log.Fatalf("create page file: %v", err)
	}
	defer func() { _ = storage.DestroyPageFile(path) }()

	pool, err := bufferpool.InitBufferPool(path, 3, replacement.LRU)
	if err != nil {
		log.Fatalf("init buffer pool: %v", err)
	}

	for pageNum := int32(0); pageNum < 5; pageNum++ {
		var ph bufferpool.PageHandle
		if err := pool.PinPage(&ph, pageNum); err != nil {
			log.Fatalf("pin page %d: %v", pageNum, err)
		}
		copy(ph.Data, fmt.Appendf(nil, "page-%d", pageNum))
		if err := pool.MarkDirty(&ph); err != nil {
			log.Fatalf("mark dirty page %d: %v", pageNum, err)
		}
		if err := pool.UnpinPage(&ph); err != nil {
			log.Fatalf("unpin page %d: %v", pageNum, err)
		}
	}

	fmt.Printf("frame contents: %v\n", pool.GetFrameContents())
	fmt.Printf("dirty flags:    %v\n", pool.GetDirtyFlags())
	fmt.Printf("fix counts:     %v\n", pool.GetFixCounts())
	fmt.Printf("read IO:  %d\n", pool.GetNumReadIO())
	fmt.Printf("write IO: %d\n", pool.GetNumWriteIO())

	if err := pool.ForceFlushPool(); err != nil {
		log.Fatalf("force flush pool: %v", err)
	}
	if err := pool.ShutdownBufferPool(); err != nil {
		log.Fatalf("shutdown buffer pool: %v", err)
	}
	fmt.Println("bufferpool smoketest finished")
}
