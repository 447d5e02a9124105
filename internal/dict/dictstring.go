package dict

import (
	"encoding/binary"
	"sort"

	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
)

// DictString concatenates every term's characters once into a single
// contiguous buffer in sorted order; each entry stores an (offset, length)
// view into that buffer instead of owning its own string. Lookup cost
// matches an uncompressed dictionary, but per-term string overhead is gone.
type DictString struct{}

// NewDictString creates a dictionary-as-string codec.
func NewDictString() *DictString {
	return &DictString{}
}

func (c *DictString) Name() string { return "dictstring" }

func (c *DictString) Tag() uint32 { return TagDictString }

// Encode writes the concatenated term buffer followed by a fixed-order entry
// table of (term offset, term length, docFreq, posting offset, posting
// length) tuples.
func (c *DictString) Encode(entries []Entry) ([]byte, error) {
	var buffer []byte
	var table []byte
	offset := 0
	for _, e := range entries {
		buffer = append(buffer, e.Term...)
		table = binary.AppendUvarint(table, uint64(offset))
		table = binary.AppendUvarint(table, uint64(len(e.Term)))
		table = appendEntryMeta(table, e)
		offset += len(e.Term)
	}

	out := putHeader(nil, TagDictString)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(entries)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(buffer)))
	out = append(out, buffer...)
	out = append(out, table...)
	return out, nil
}

// Decode materialises the entry table as views into one shared string.
// Corrupted (offset, length) pairs that fall outside the buffer are rejected
// rather than misparsed.
func (c *DictString) Decode(data []byte) (Resolver, error) {
	payload, err := checkHeader(data, TagDictString)
	if err != nil {
		return nil, err
	}
	if len(payload) < 8 {
		return nil, errs.New(errs.ErrCorruptIndex, "dictionary-as-string payload truncated")
	}
	count := int(binary.LittleEndian.Uint32(payload[0:4]))
	bufLen := int(binary.LittleEndian.Uint32(payload[4:8]))
	if bufLen < 0 || 8+bufLen > len(payload) {
		return nil, errs.New(errs.ErrCorruptIndex, "dictionary-as-string buffer truncated")
	}
	// One backing string for every term view.
	buffer := string(payload[8 : 8+bufLen])
	table := payload[8+bufLen:]

	terms := make([]string, 0, count)
	locs := make([]Location, 0, count)
	pos := 0
	prev := ""
	for i := 0; i < count; i++ {
		termOff, next := uvarint(table, pos)
		termLen, next2 := uvarint(table, next)
		if next2 < 0 {
			return nil, errs.New(errs.ErrCorruptIndex, "dictionary-as-string table truncated")
		}
		if int(termOff)+int(termLen) > len(buffer) {
			return nil, errs.Newf(errs.ErrCorruptIndex,
				"term view (%d,%d) exceeds buffer of %d bytes", termOff, termLen, len(buffer))
		}
		term := buffer[termOff : termOff+termLen]
		if i > 0 && term <= prev {
			return nil, errs.New(errs.ErrCorruptIndex, "dictionary-as-string terms out of order")
		}
		loc, _, after := readEntryMeta(table, next2)
		if after < 0 {
			return nil, errs.New(errs.ErrCorruptIndex, "dictionary-as-string entry truncated")
		}
		terms = append(terms, term)
		locs = append(locs, loc)
		prev = term
		pos = after
	}
	return &dictStringResolver{terms: terms, locs: locs}, nil
}

type dictStringResolver struct {
	terms []string
	locs  []Location
}

func (r *dictStringResolver) Len() int { return len(r.terms) }

func (r *dictStringResolver) Resolve(term string) (Location, bool) {
	i := sort.SearchStrings(r.terms, term)
	if i >= len(r.terms) || r.terms[i] != term {
		return Location{}, false
	}
	return r.locs[i], true
}

func (r *dictStringResolver) Terms() []string {
	return r.terms
}
