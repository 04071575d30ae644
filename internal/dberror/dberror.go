// Package dberror collects the sentinel errors shared by the storage,
// buffer pool, and record manager layers. Callers use errors.Is / errors.As;
// nothing in this package formats or prints an error code table — that is
// left to whoever embeds the kernel.
package dberror

import "errors"

// Input / argument errors.
var (
	ErrNoFilename        = errors.New("dberror: no filename given")
	ErrInvalidPageNumber = errors.New("dberror: invalid page number")
	ErrInit              = errors.New("dberror: initialization error")
)

// File-system errors.
var (
	ErrFileCreationFailed = errors.New("dberror: file creation failed")
	ErrFileNotFound       = errors.New("dberror: file not found")
	ErrFileNotClosed      = errors.New("dberror: file not closed")
	ErrFileNotInitialized = errors.New("dberror: file not initialized")
	ErrOffsetFailed       = errors.New("dberror: offset seek failed")
	ErrWriteFailed        = errors.New("dberror: write failed")
	ErrReadFileFailed     = errors.New("dberror: read file failed")
)

// Page-level errors.
var (
	ErrReadNonExistingPage = errors.New("dberror: read of non-existing page")
	ErrIncompatibleBlockSize = errors.New("dberror: incompatible block size")
)

// Buffer manager errors.
var (
	ErrBMNotAllocated  = errors.New("dberror: buffer pool not allocated")
	ErrPageNotFound    = errors.New("dberror: page not found in buffer pool")
	ErrNoFrameAvailable = errors.New("dberror: no frame available for replacement")
	ErrMemoryAllocFail = errors.New("dberror: memory allocation failure")
	ErrUnknownStrategy = errors.New("dberror: unknown replacement strategy")
)

// Record manager errors.
var (
	ErrFileAlreadyExists = errors.New("dberror: file already exists")
	ErrNoFreePages       = errors.New("dberror: no free pages available")
	ErrNoMoreTuples      = errors.New("dberror: no more tuples")
)
