// Package storage is the storage manager: it treats a single on-disk file
// as a sequence of fixed-size pages and provides absolute and
// position-relative block I/O. It knows nothing about what the bytes in a
// page mean — that is the buffer pool's and record manager's job.
package storage

import (
	"fmt"
	"io"
	"os"

	"github.com/tuannm99/novasql/internal/alias/util"
	"github.com/tuannm99/novasql/internal/dberror"
)

// PageSize is the fixed size, in bytes, of every page in a page file.
const PageSize = 4096

// PageFileHandle is the open-file handle returned by OpenPageFile. It owns
// the underlying *os.File and tracks the file's current page count and the
// cursor used by the position-relative Read*Block family.
type PageFileHandle struct {
	FileName      string
	TotalNumPages int
	CurPagePos    int

	file *os.File
}

// CreatePageFile creates a new page file containing exactly one zeroed page.
func CreatePageFile(name string) error {
	if name == "" {
		return dberror.ErrNoFilename
	}

	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create page file %q: %w: %v", name, dberror.ErrFileCreationFailed, err)
	}
	defer util.CloseFileFunc(f)

	if _, err := f.Write(make([]byte, PageSize)); err != nil {
		return fmt.Errorf("create page file %q: %w: %v", name, dberror.ErrFileCreationFailed, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("create page file %q: %w: %v", name, dberror.ErrFileCreationFailed, err)
	}
	return nil
}

// OpenPageFile opens an existing page file for read-write access.
func OpenPageFile(name string) (*PageFileHandle, error) {
	if name == "" {
		return nil, dberror.ErrNoFilename
	}

	f, err := os.OpenFile(name, os.O_RDWR, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open page file %q: %w", name, dberror.ErrFileNotFound)
		}
		return nil, fmt.Errorf("open page file %q: %v", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat page file %q: %v", name, err)
	}

	total := int((info.Size() + PageSize - 1) / PageSize)
	return &PageFileHandle{
		FileName:      name,
		TotalNumPages: total,
		CurPagePos:    0,
		file:          f,
	}, nil
}

// ClosePageFile closes the underlying file handle.
func ClosePageFile(fh *PageFileHandle) error {
	if fh == nil || fh.file == nil {
		return dberror.ErrFileNotInitialized
	}
	if err := fh.file.Close(); err != nil {
		return fmt.Errorf("close page file %q: %w: %v", fh.FileName, dberror.ErrFileNotClosed, err)
	}
	fh.file = nil
	return nil
}

// DestroyPageFile removes a page file from disk.
func DestroyPageFile(name string) error {
	if name == "" {
		return dberror.ErrNoFilename
	}
	if err := os.Remove(name); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("destroy page file %q: %w", name, dberror.ErrFileNotFound)
		}
		return err
	}
	return nil
}

// ReadBlock reads page n into memPage and moves the cursor to n.
func ReadBlock(pageNum int, fh *PageFileHandle, memPage []byte) error {
	if fh == nil || fh.file == nil {
		return dberror.ErrFileNotInitialized
	}
	if pageNum < 0 || pageNum >= fh.TotalNumPages {
		return fmt.Errorf("read block %d of %q: %w", pageNum, fh.FileName, dberror.ErrReadNonExistingPage)
	}
	if len(memPage) != PageSize {
		return fmt.Errorf("read block %d of %q: %w", pageNum, fh.FileName, dberror.ErrIncompatibleBlockSize)
	}

	off := int64(pageNum) * PageSize
	if _, err := fh.file.ReadAt(memPage, off); err != nil && err != io.EOF {
		return fmt.Errorf("read block %d of %q: %w: %v", pageNum, fh.FileName, dberror.ErrReadFileFailed, err)
	}

	fh.CurPagePos = pageNum
	return nil
}

// ReadFirstBlock reads page 0.
func ReadFirstBlock(fh *PageFileHandle, memPage []byte) error {
	return ReadBlock(0, fh, memPage)
}

// ReadLastBlock reads the final page of the file.
func ReadLastBlock(fh *PageFileHandle, memPage []byte) error {
	if fh == nil {
		return dberror.ErrFileNotInitialized
	}
	return ReadBlock(fh.TotalNumPages-1, fh, memPage)
}

// ReadNextBlock reads the page after the current cursor.
func ReadNextBlock(fh *PageFileHandle, memPage []byte) error {
	if fh == nil {
		return dberror.ErrFileNotInitialized
	}
	return ReadBlock(fh.CurPagePos+1, fh, memPage)
}

// ReadPreviousBlock reads the page before the current cursor.
func ReadPreviousBlock(fh *PageFileHandle, memPage []byte) error {
	if fh == nil {
		return dberror.ErrFileNotInitialized
	}
	return ReadBlock(fh.CurPagePos-1, fh, memPage)
}

// ReadCurrentBlock re-reads the page at the current cursor.
func ReadCurrentBlock(fh *PageFileHandle, memPage []byte) error {
	if fh == nil {
		return dberror.ErrFileNotInitialized
	}
	return ReadBlock(fh.CurPagePos, fh, memPage)
}

// WriteBlock writes memPage at page n, extending the file with zeroed pages
// first if n is beyond the current end of file. The write is flushed to
// disk before WriteBlock returns.
func WriteBlock(pageNum int, fh *PageFileHandle, memPage []byte) error {
	if fh == nil || fh.file == nil {
		return dberror.ErrFileNotInitialized
	}
	if pageNum < 0 {
		return fmt.Errorf("write block %d of %q: %w", pageNum, fh.FileName, dberror.ErrOffsetFailed)
	}
	if len(memPage) != PageSize {
		return fmt.Errorf("write block %d of %q: %w", pageNum, fh.FileName, dberror.ErrIncompatibleBlockSize)
	}

	if pageNum >= fh.TotalNumPages {
		if err := EnsureCapacity(pageNum+1, fh); err != nil {
			return err
		}
	}

	off := int64(pageNum) * PageSize
	if _, err := fh.file.WriteAt(memPage, off); err != nil {
		return fmt.Errorf("write block %d of %q: %w: %v", pageNum, fh.FileName, dberror.ErrWriteFailed, err)
	}
	if err := fh.file.Sync(); err != nil {
		return fmt.Errorf("write block %d of %q: %w: %v", pageNum, fh.FileName, dberror.ErrWriteFailed, err)
	}

	fh.CurPagePos = pageNum
	return nil
}

// WriteCurrentBlock writes memPage at the current cursor position.
func WriteCurrentBlock(fh *PageFileHandle, memPage []byte) error {
	if fh == nil {
		return dberror.ErrFileNotInitialized
	}
	return WriteBlock(fh.CurPagePos, fh, memPage)
}

// AppendEmptyBlock appends one zeroed page to the end of the file and
// restores the cursor to its prior value.
func AppendEmptyBlock(fh *PageFileHandle) error {
	if fh == nil || fh.file == nil {
		return dberror.ErrFileNotInitialized
	}

	off := int64(fh.TotalNumPages) * PageSize
	if _, err := fh.file.WriteAt(make([]byte, PageSize), off); err != nil {
		return fmt.Errorf("append empty block to %q: %w: %v", fh.FileName, dberror.ErrWriteFailed, err)
	}
	if err := fh.file.Sync(); err != nil {
		return fmt.Errorf("append empty block to %q: %w: %v", fh.FileName, dberror.ErrWriteFailed, err)
	}

	saved := fh.CurPagePos
	fh.TotalNumPages++
	fh.CurPagePos = saved
	return nil
}

// EnsureCapacity grows the file with zeroed pages until it holds at least m
// pages.
func EnsureCapacity(m int, fh *PageFileHandle) error {
	if fh == nil {
		return dberror.ErrFileNotInitialized
	}
	for fh.TotalNumPages < m {
		if err := AppendEmptyBlock(fh); err != nil {
			return err
		}
	}
	return nil
}

// GetBlockPos returns the file's current page cursor.
func GetBlockPos(fh *PageFileHandle) int {
	if fh == nil {
		return 0
	}
	return fh.CurPagePos
}
