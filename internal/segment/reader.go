package segment

import (
	"encoding/binary"
	"hash/crc32"
	"os"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/AshPopcorn/Group5-ASM2/internal/dict"
	"github.com/AshPopcorn/Group5-ASM2/internal/index"
	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
)

// Reader serves term lookups against a persisted index. The decoded
// dictionary, doc table, and universe are immutable once opened, so a Reader
// may be shared by any number of concurrent queries.
type Reader struct {
	file     *os.File
	filePath string
	header   Header
	resolver dict.Resolver
	universe *roaring.Bitmap
	docs     map[uint32]string
}

// Open loads an index file and its dictionary sidecar. The sidecar's variant
// tag must match the codec tag recorded in the index header; a mismatch is
// reported, never silently reinterpreted.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Newf(errs.ErrConstruction, "opening index file: %v", err)
	}
	headerBytes := make([]byte, HeaderSize)
	if _, err := f.ReadAt(headerBytes, 0); err != nil {
		f.Close()
		return nil, errs.Newf(errs.ErrCorruptIndex, "reading index header: %v", err)
	}
	header := unmarshalHeader(headerBytes)
	if header.Magic != MagicBytes {
		f.Close()
		return nil, errs.Newf(errs.ErrCorruptIndex, "bad magic bytes %x", header.Magic)
	}
	if header.Version != FormatVersion {
		f.Close()
		return nil, errs.Newf(errs.ErrCorruptIndex, "unsupported format version %d", header.Version)
	}

	codec, ok := dict.ByTag(header.CodecTag)
	if !ok {
		f.Close()
		return nil, errs.Newf(errs.ErrCodecMismatch, "unknown codec tag %d", header.CodecTag)
	}
	sidecar, err := os.ReadFile(path + SidecarSuffix)
	if err != nil {
		f.Close()
		return nil, errs.Newf(errs.ErrCorruptIndex, "reading dictionary sidecar: %v", err)
	}
	resolver, err := codec.Decode(sidecar)
	if err != nil {
		f.Close()
		return nil, err
	}

	r := &Reader{
		file:     f,
		filePath: path,
		header:   header,
		resolver: resolver,
	}
	if err := r.loadTail(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// loadTail reads the doc table, universe bitmap, and footer, verifying the
// checksum over the tail regions.
func (r *Reader) loadTail() error {
	stat, err := r.file.Stat()
	if err != nil {
		return errs.Newf(errs.ErrCorruptIndex, "stat index file: %v", err)
	}
	footer := make([]byte, FooterSize)
	if _, err := r.file.ReadAt(footer, stat.Size()-int64(FooterSize)); err != nil {
		return errs.Newf(errs.ErrCorruptIndex, "reading footer: %v", err)
	}
	universeSize := int64(binary.LittleEndian.Uint64(footer[8:16]))

	tailSize := r.header.DocsSize + universeSize
	tail := make([]byte, tailSize)
	if _, err := r.file.ReadAt(tail, r.header.DocsOffset); err != nil {
		return errs.Newf(errs.ErrCorruptIndex, "reading doc table and universe: %v", err)
	}
	if sum := crc32.ChecksumIEEE(tail); sum != binary.LittleEndian.Uint32(footer[0:4]) {
		return errs.New(errs.ErrCorruptIndex, "index tail checksum mismatch")
	}

	docsBytes := tail[:r.header.DocsSize]
	pos := 0
	count, n := binary.Uvarint(docsBytes[pos:])
	if n <= 0 {
		return errs.New(errs.ErrCorruptIndex, "doc table truncated")
	}
	pos += n
	docs := make(map[uint32]string, count)
	for i := uint64(0); i < count; i++ {
		id, n := binary.Uvarint(docsBytes[pos:])
		if n <= 0 {
			return errs.New(errs.ErrCorruptIndex, "doc table truncated")
		}
		pos += n
		nameLen, n := binary.Uvarint(docsBytes[pos:])
		if n <= 0 || pos+n+int(nameLen) > len(docsBytes) {
			return errs.New(errs.ErrCorruptIndex, "doc table truncated")
		}
		pos += n
		docs[uint32(id)] = string(docsBytes[pos : pos+int(nameLen)])
		pos += int(nameLen)
	}
	r.docs = docs

	universe := roaring.New()
	if err := universe.UnmarshalBinary(tail[r.header.DocsSize:]); err != nil {
		return errs.Newf(errs.ErrCorruptIndex, "parsing universe bitmap: %v", err)
	}
	r.universe = universe
	return nil
}

// Postings returns the posting list for a term, or ok=false if the term is
// not in the dictionary.
func (r *Reader) Postings(term string) (index.PostingList, bool, error) {
	loc, ok := r.resolver.Resolve(term)
	if !ok {
		return nil, false, nil
	}
	if loc.Offset < 0 || loc.Offset+loc.Length > r.header.PostSize {
		return nil, false, errs.Newf(errs.ErrCorruptIndex,
			"posting location (%d,%d) exceeds postings region of %d bytes", loc.Offset, loc.Length, r.header.PostSize)
	}
	record := make([]byte, loc.Length)
	if _, err := r.file.ReadAt(record, r.header.PostOffset+loc.Offset); err != nil {
		return nil, false, errs.Newf(errs.ErrCorruptIndex, "reading postings for %q: %v", term, err)
	}
	pos := 0
	count, n := binary.Uvarint(record[pos:])
	if n <= 0 {
		return nil, false, errs.Newf(errs.ErrCorruptIndex, "posting record for %q truncated", term)
	}
	pos += n
	postings := make(index.PostingList, count)
	prev := uint64(0)
	for i := range postings {
		delta, n := binary.Uvarint(record[pos:])
		if n <= 0 {
			return nil, false, errs.Newf(errs.ErrCorruptIndex, "posting record for %q truncated", term)
		}
		pos += n
		if i == 0 {
			prev = delta
		} else {
			prev += delta
		}
		postings[i] = uint32(prev)
	}
	return postings, true, nil
}

// Universe is the set of every document id in the index. Callers must treat
// it as read-only; Clone before mutating.
func (r *Reader) Universe() *roaring.Bitmap {
	return r.universe
}

// DocName resolves a document id to its external name.
func (r *Reader) DocName(id uint32) (string, bool) {
	name, ok := r.docs[id]
	return name, ok
}

// TermCount is the number of distinct terms.
func (r *Reader) TermCount() int {
	return r.resolver.Len()
}

// DocCount is the number of documents.
func (r *Reader) DocCount() int {
	return len(r.docs)
}

// PostingsSize is the size in bytes of the postings region.
func (r *Reader) PostingsSize() int64 {
	return r.header.PostSize
}

// DocsSize is the size in bytes of the document-name table.
func (r *Reader) DocsSize() int64 {
	return r.header.DocsSize
}

// CodecTag is the dictionary codec variant recorded at write time.
func (r *Reader) CodecTag() uint32 {
	return r.header.CodecTag
}

// SkipInterval is the skip-pointer hint recorded at write time (-1 for
// sqrt, 0 for none).
func (r *Reader) SkipInterval() int {
	return DecodeSkipHint(r.header.SkipHint)
}

// Terms reconstructs the full sorted term list from the dictionary.
func (r *Reader) Terms() []string {
	return r.resolver.Terms()
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}
