package dict

import (
	"encoding/binary"
	"sort"

	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
)

// FrontCoded groups terms like the blocked codec but stores each non-leading
// term as (shared-prefix length, suffix) relative to its predecessor. Terms
// inside a group can only be reconstructed front to back, so resolution
// within a group is a sequential scan.
type FrontCoded struct {
	groupSize int
}

// NewFrontCoded creates a front-coded codec with k terms per group.
func NewFrontCoded(groupSize int) *FrontCoded {
	if groupSize < 1 {
		groupSize = 1
	}
	return &FrontCoded{groupSize: groupSize}
}

func (c *FrontCoded) Name() string { return "frontcoded" }

func (c *FrontCoded) Tag() uint32 { return TagFrontCoded }

// Encode lays out a directory of group offsets followed by the entry blob.
// Each group's leader term is stored in full; every subsequent term stores
// the prefix length shared with its immediate predecessor plus the suffix.
func (c *FrontCoded) Encode(entries []Entry) ([]byte, error) {
	var blob []byte
	var dir []byte
	groups := 0
	prev := ""
	for i, e := range entries {
		if i%c.groupSize == 0 {
			dir = binary.AppendUvarint(dir, uint64(len(blob)))
			blob = binary.AppendUvarint(blob, uint64(len(e.Term)))
			blob = append(blob, e.Term...)
			groups++
		} else {
			p := commonPrefixLen(prev, e.Term)
			suffix := e.Term[p:]
			blob = binary.AppendUvarint(blob, uint64(p))
			blob = binary.AppendUvarint(blob, uint64(len(suffix)))
			blob = append(blob, suffix...)
		}
		blob = appendEntryMeta(blob, e)
		prev = e.Term
	}

	out := putHeader(nil, TagFrontCoded)
	out = binary.LittleEndian.AppendUint32(out, uint32(c.groupSize))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(entries)))
	out = binary.LittleEndian.AppendUint32(out, uint32(groups))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(dir)))
	out = append(out, dir...)
	out = append(out, blob...)
	return out, nil
}

// Decode reads the group offsets and materialises each group's leader term
// for binary search; everything else stays encoded until a group is scanned.
func (c *FrontCoded) Decode(data []byte) (Resolver, error) {
	payload, err := checkHeader(data, TagFrontCoded)
	if err != nil {
		return nil, err
	}
	if len(payload) < 16 {
		return nil, errs.New(errs.ErrCorruptIndex, "front-coded dictionary truncated")
	}
	groupSize := int(binary.LittleEndian.Uint32(payload[0:4]))
	count := int(binary.LittleEndian.Uint32(payload[4:8]))
	groupCount := int(binary.LittleEndian.Uint32(payload[8:12]))
	dirLen := int(binary.LittleEndian.Uint32(payload[12:16]))
	if groupSize < 1 || dirLen < 0 || 16+dirLen > len(payload) {
		return nil, errs.New(errs.ErrCorruptIndex, "front-coded dictionary has invalid directory")
	}
	dir := payload[16 : 16+dirLen]
	blob := payload[16+dirLen:]

	groups := make([]blockedGroup, 0, groupCount)
	pos := 0
	for g := 0; g < groupCount; g++ {
		start, next := uvarint(dir, pos)
		if next < 0 {
			return nil, errs.New(errs.ErrCorruptIndex, "front-coded group directory truncated")
		}
		leader, after := readBlockedTerm(blob, int(start))
		if after < 0 {
			return nil, errs.New(errs.ErrCorruptIndex, "front-coded group leader truncated")
		}
		groups = append(groups, blockedGroup{first: leader, start: int(start)})
		pos = next
	}
	return &frontCodedResolver{
		groupSize: groupSize,
		count:     count,
		groups:    groups,
		blob:      blob,
	}, nil
}

type frontCodedResolver struct {
	groupSize int
	count     int
	groups    []blockedGroup
	blob      []byte
}

func (r *frontCodedResolver) Len() int { return r.count }

// Resolve locates the candidate group by binary search on leader terms and
// reconstructs terms sequentially from the leader forward.
func (r *frontCodedResolver) Resolve(term string) (Location, bool) {
	g := sort.Search(len(r.groups), func(i int) bool {
		return r.groups[i].first > term
	}) - 1
	if g < 0 {
		return Location{}, false
	}
	loc, found, _ := r.scanGroup(g, term, nil)
	return loc, found
}

func (r *frontCodedResolver) Terms() []string {
	terms := make([]string, 0, r.count)
	for g := range r.groups {
		_, _, terms = r.scanGroup(g, "", terms)
	}
	return terms
}

// scanGroup walks one group reconstructing its terms. When target is
// non-empty it returns the target's location as soon as it is found; when
// collect is non-nil every reconstructed term is appended to it.
func (r *frontCodedResolver) scanGroup(g int, target string, collect []string) (Location, bool, []string) {
	pos := r.groups[g].start
	end := len(r.blob)
	if g+1 < len(r.groups) {
		end = r.groups[g+1].start
	}
	cur := ""
	for i := 0; i < r.groupSize && pos >= 0 && pos < end; i++ {
		if i == 0 {
			cur, pos = readBlockedTerm(r.blob, pos)
		} else {
			var prefixLen, suffixLen uint64
			prefixLen, pos = uvarint(r.blob, pos)
			suffixLen, pos = uvarint(r.blob, pos)
			if pos < 0 || pos+int(suffixLen) > len(r.blob) || int(prefixLen) > len(cur) {
				return Location{}, false, collect
			}
			cur = cur[:prefixLen] + string(r.blob[pos:pos+int(suffixLen)])
			pos += int(suffixLen)
		}
		if pos < 0 {
			return Location{}, false, collect
		}
		var loc Location
		loc, _, pos = readEntryMeta(r.blob, pos)
		if pos < 0 {
			return Location{}, false, collect
		}
		if collect != nil {
			collect = append(collect, cur)
		}
		if target != "" {
			if cur == target {
				return loc, true, collect
			}
			if cur > target {
				return Location{}, false, collect
			}
		}
	}
	return Location{}, false, collect
}
