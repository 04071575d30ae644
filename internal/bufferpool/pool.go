// Package bufferpool is the buffer manager: a fixed-size pool of frames
// caching pages from one page file, with pin/unpin/markDirty/forcePage and
// a pluggable eviction policy (FIFO, LRU, CLOCK, LFU).
package bufferpool

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tuannm99/novasql/internal/bufferpool/replacement"
	"github.com/tuannm99/novasql/internal/dberror"
	"github.com/tuannm99/novasql/internal/storage"
)

const logPrefix = "bufferpool: "

// NoPage is the sentinel frame.PageNum value for an empty frame.
const NoPage int32 = -1

// ErrPagePinned is returned by ShutdownBufferPool when a frame still has a
// fix count above zero.
var ErrPagePinned = errors.New("bufferpool: cannot shut down pool with a pinned frame")

// Frame is one page-sized slot in the pool.
type Frame struct {
	PageNum  int32
	Data     []byte
	FixCount int32
	Dirty    bool
}

// PageHandle is the caller-facing view of a pinned page: which page number
// it holds, and the live byte slice backing that frame. Mutating Data
// mutates the frame directly.
type PageHandle struct {
	PageNum int32
	Data    []byte
}

// Pool is a fixed-size buffer pool bound to one page file.
type Pool struct {
	FileName string
	Frames   []*Frame
	Strategy replacement.Strategy

	fh        *storage.PageFileHandle
	policy    replacement.Policy
	pageTable map[int32]int
	readIO    uint64
	writeIO   uint64
}

var _ replacement.FixCounter = (*Pool)(nil)

// NumFrames implements replacement.FixCounter.
func (p *Pool) NumFrames() int { return len(p.Frames) }

// FixCount implements replacement.FixCounter.
func (p *Pool) FixCount(frame int) int32 { return p.Frames[frame].FixCount }

// InitBufferPool opens fileName and allocates numFrames frames over it,
// using the given replacement strategy.
func InitBufferPool(fileName string, numFrames int, strategy replacement.Strategy) (*Pool, error) {
	if numFrames < 1 {
		return nil, dberror.ErrInvalidPageNumber
	}

	fh, err := storage.OpenPageFile(fileName)
	if err != nil {
		return nil, err
	}

	policy, err := replacement.New(strategy)
	if err != nil {
		_ = storage.ClosePageFile(fh)
		return nil, err
	}

	pool := &Pool{
		FileName:  fileName,
		Frames:    make([]*Frame, numFrames),
		Strategy:  strategy,
		fh:        fh,
		policy:    policy,
		pageTable: make(map[int32]int, numFrames),
	}
	for i := range pool.Frames {
		pool.Frames[i] = &Frame{PageNum: NoPage, Data: make([]byte, storage.PageSize)}
	}
	policy.Init(pool)

	slog.Debug(logPrefix+"initialized", "file", fileName, "frames", numFrames, "strategy", strategy)
	return pool, nil
}

// PinPage guarantees that after return, some frame holds pageNum's
// contents, its fix count has been incremented by one, and ph reflects
// that frame.
func (p *Pool) PinPage(ph *PageHandle, pageNum int32) error {
	if idx, ok := p.pageTable[pageNum]; ok {
		f := p.Frames[idx]
		f.FixCount++
		p.policy.Pin(idx)
		ph.PageNum = pageNum
		ph.Data = f.Data
		slog.Debug(logPrefix+"pin hit", "pageNum", pageNum, "frame", idx, "fixCount", f.FixCount)
		return nil
	}

	victim := p.emptyFrame()
	if victim == -1 {
		v, ok := p.policy.ChooseVictim()
		if !ok {
			return fmt.Errorf("pin page %d in %q: %w", pageNum, p.FileName, dberror.ErrNoFrameAvailable)
		}
		victim = v
	}

	f := p.Frames[victim]
	if f.PageNum != NoPage {
		if f.Dirty {
			if err := storage.WriteBlock(int(f.PageNum), p.fh, f.Data); err != nil {
				return err
			}
			p.writeIO++
			f.Dirty = false
		}
		delete(p.pageTable, f.PageNum)
	}

	for i := range f.Data {
		f.Data[i] = 0
	}
	if int(pageNum) < p.fh.TotalNumPages {
		if err := storage.ReadBlock(int(pageNum), p.fh, f.Data); err != nil {
			return err
		}
		p.readIO++
	}

	f.PageNum = pageNum
	f.FixCount = 1
	f.Dirty = false
	p.pageTable[pageNum] = victim
	p.policy.Pin(victim)

	ph.PageNum = pageNum
	ph.Data = f.Data
	slog.Debug(logPrefix+"pin loaded", "pageNum", pageNum, "frame", victim)
	return nil
}

func (p *Pool) emptyFrame() int {
	for i, f := range p.Frames {
		if f.PageNum == NoPage {
			return i
		}
	}
	return -1
}

// UnpinPage decrements the fix count of the frame currently holding
// ph.PageNum.
func (p *Pool) UnpinPage(ph *PageHandle) error {
	idx, ok := p.pageTable[ph.PageNum]
	if !ok {
		return fmt.Errorf("unpin page %d in %q: %w", ph.PageNum, p.FileName, dberror.ErrPageNotFound)
	}
	f := p.Frames[idx]
	if f.FixCount > 0 {
		f.FixCount--
	}
	return nil
}

// MarkDirty marks the frame holding ph.PageNum as dirty.
func (p *Pool) MarkDirty(ph *PageHandle) error {
	idx, ok := p.pageTable[ph.PageNum]
	if !ok {
		return fmt.Errorf("mark dirty page %d in %q: %w", ph.PageNum, p.FileName, dberror.ErrPageNotFound)
	}
	p.Frames[idx].Dirty = true
	return nil
}

// ForcePage writes the frame holding ph.PageNum back to disk immediately,
// regardless of fix count, and clears its dirty bit.
func (p *Pool) ForcePage(ph *PageHandle) error {
	idx, ok := p.pageTable[ph.PageNum]
	if !ok {
		return fmt.Errorf("force page %d in %q: %w", ph.PageNum, p.FileName, dberror.ErrPageNotFound)
	}
	f := p.Frames[idx]
	if err := storage.WriteBlock(int(f.PageNum), p.fh, f.Data); err != nil {
		return err
	}
	p.writeIO++
	f.Dirty = false
	return nil
}

// ForceFlushPool writes every dirty, unpinned frame back to disk.
func (p *Pool) ForceFlushPool() error {
	for _, f := range p.Frames {
		if f.PageNum == NoPage || !f.Dirty || f.FixCount != 0 {
			continue
		}
		if err := storage.WriteBlock(int(f.PageNum), p.fh, f.Data); err != nil {
			return err
		}
		p.writeIO++
		f.Dirty = false
	}
	return nil
}

// ShutdownBufferPool flushes the pool and releases its state. It refuses
// to run while any frame is still pinned.
func (p *Pool) ShutdownBufferPool() error {
	for _, f := range p.Frames {
		if f.FixCount > 0 {
			return fmt.Errorf("shutdown pool %q: page %d still pinned (fixCount=%d): %w",
				p.FileName, f.PageNum, f.FixCount, ErrPagePinned)
		}
	}
	if err := p.ForceFlushPool(); err != nil {
		return err
	}
	p.policy.Free()
	return storage.ClosePageFile(p.fh)
}

// GetFrameContents returns the page number resident in each frame (NoPage
// for an empty frame).
func (p *Pool) GetFrameContents() []int32 {
	out := make([]int32, len(p.Frames))
	for i, f := range p.Frames {
		out[i] = f.PageNum
	}
	return out
}

// GetDirtyFlags returns the dirty bit of each frame.
func (p *Pool) GetDirtyFlags() []bool {
	out := make([]bool, len(p.Frames))
	for i, f := range p.Frames {
		out[i] = f.Dirty
	}
	return out
}

// GetFixCounts returns the fix count of each frame.
func (p *Pool) GetFixCounts() []int32 {
	out := make([]int32, len(p.Frames))
	for i, f := range p.Frames {
		out[i] = f.FixCount
	}
	return out
}

// GetNumReadIO returns the number of pages fetched from disk over the
// pool's lifetime.
func (p *Pool) GetNumReadIO() uint64 { return p.readIO }

// GetNumWriteIO returns the number of pages written to disk over the
// pool's lifetime.
func (p *Pool) GetNumWriteIO() uint64 { return p.writeIO }

// TotalPages returns the number of pages the underlying file held when the
// pool was opened, plus every page since appended via WriteBlock. Callers
// that need to allocate a genuinely new page number (one never seen by
// this pool before) track their own counter seeded from this value, since
// pinning a page past TotalPages only stages zeroed bytes in a frame
// without yet extending the file on disk.
func (p *Pool) TotalPages() int { return p.fh.TotalNumPages }
