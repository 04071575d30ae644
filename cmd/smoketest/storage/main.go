// Command storage-smoketest drives the storage manager directly: create a
// page file, write a few blocks, read them back through both the absolute
// and current-position-relative APIs, and print what landed on disk.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tuannm99/novasql/internal/storage"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	path := filepath.Join(os.TempDir(), "novasql-storage-smoketest.db")
	_ = os.Remove(path)

	if err := storage.CreatePageFile(path); err != nil {
		log.Fatalf("create page file: %v", err)
	}

	fh, err := storage.OpenPageFile(path)
	if err != nil {
		log.Fatalf("open page file: %v", err)
	}
	defer func() {
		if err := storage.ClosePageFile(fh); err != nil {
			log.Printf("close page file: %v", err)
		}
	}()

	for i := 0; i < 4; i++ {
		if err := storage.AppendEmptyBlock(fh); err != nil {
			log.Fatalf("append empty block %d: %v", i, err)
		}
	}

	block := make([]byte, storage.PageSize)
	copy(block, []byte("block-2-payload"))
	if err := storage.WriteBlock(2, fh, block); err != nil {
		log.Fatalf("write block 2: %v", err)
	}

	readBack := make([]byte, storage.PageSize)
	if err := storage.ReadBlock(2, fh, readBack); err != nil {
		log.Fatalf("read block 2: %v", err)
	}
	fmt.Printf("block 2 payload: %q\n", readBack[:len("block-2-payload")])

	if err := storage.ReadFirstBlock(fh, readBack); err != nil {
		log.Fatalf("read first block: %v", err)
	}
	fmt.Printf("total pages: %d, cur pos: %d\n", fh.TotalNumPages, storage.GetBlockPos(fh))

	if err := storage.ReadNextBlock(fh, readBack); err != nil {
		log.Fatalf("read next block: %v", err)
	}
	fmt.Printf("cur pos after ReadNextBlock: %d\n", storage.GetBlockPos(fh))

	if err := storage.DestroyPageFile(path); err != nil {
		log.Printf("destroy page file: %v", err)
	}
	fmt.Println("storage smoketest finished")
}
