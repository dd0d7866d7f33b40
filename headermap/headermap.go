// Package headermap reads and writes clang header maps, the hash tables
// mapping include names to the files they find.
package headermap

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/juju/errgo"
)

const (
	magic       = 0x68617031 // 'hmap'
	version     = 1
	headerSize  = 24
	bucketSize  = 12
	minBuckets  = 8
	emptyBucket = 0
)

var ErrInvalid = errgo.New("invalid header map")

type entry struct {
	key, prefix, suffix string
}

// A Headermap is a set of entries, each mapping a key to the path prefix
// and suffix it is found at. Keys are case insensitive.
type Headermap struct {
	entries []entry
	keys    map[string]bool
}

func New() *Headermap {
	return &Headermap{keys: map[string]bool{}}
}

// Add adds key unless it is already present, reporting whether it did.
// Empty arguments are rejected.
func (h *Headermap) Add(key, prefix, suffix string) bool {
	if key == "" || prefix == "" || suffix == "" {
		return false
	}
	k := strings.ToLower(key)
	if h.keys[k] {
		return false
	}
	h.keys[k] = true
	h.entries = append(h.entries, entry{key, prefix, suffix})
	return true
}

func (h *Headermap) Len() int {
	return len(h.entries)
}

// Lookup returns the path key maps to.
func (h *Headermap) Lookup(key string) (string, bool) {
	k := strings.ToLower(key)
	for _, e := range h.entries {
		if strings.ToLower(e.key) == k {
			return e.prefix + e.suffix, true
		}
	}
	return "", false
}

func hash(key string) uint32 {
	var h uint32
	for i := 0; i < len(key); i++ {
		c := key[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		h += uint32(c) * 13
	}
	return h
}

// Bytes serializes the map. The table keeps at least a quarter of its
// buckets free and its size a power of two.
func (h *Headermap) Bytes() []byte {
	n := uint32(minBuckets)
	for uint32(len(h.entries))+1 >= n*3/4 {
		n <<= 1
	}

	strs := []byte{0}
	offsets := map[string]uint32{}
	intern := func(s string) uint32 {
		if o, ok := offsets[s]; ok {
			return o
		}
		o := uint32(len(strs))
		strs = append(strs, s...)
		strs = append(strs, 0)
		offsets[s] = o
		return o
	}

	type bucket struct{ key, prefix, suffix uint32 }
	buckets := make([]bucket, n)
	var maxLen uint32
	for _, e := range h.entries {
		b := bucket{intern(e.key), intern(e.prefix), intern(e.suffix)}
		for i := hash(e.key) % n; ; i = (i + 1) % n {
			if buckets[i].key == emptyBucket {
				buckets[i] = b
				break
			}
		}
		if l := uint32(len(e.key)); l > maxLen {
			maxLen = l
		}
	}

	var buf bytes.Buffer
	le := binary.LittleEndian
	header := make([]byte, headerSize)
	le.PutUint32(header[0:], magic)
	le.PutUint16(header[4:], version)
	le.PutUint16(header[6:], 0)
	le.PutUint32(header[8:], headerSize+n*bucketSize)
	le.PutUint32(header[12:], uint32(len(h.entries)))
	le.PutUint32(header[16:], n)
	le.PutUint32(header[20:], maxLen)
	buf.Write(header)

	b := make([]byte, bucketSize)
	for _, bk := range buckets {
		le.PutUint32(b[0:], bk.key)
		le.PutUint32(b[4:], bk.prefix)
		le.PutUint32(b[8:], bk.suffix)
		buf.Write(b)
	}
	buf.Write(strs)
	return buf.Bytes()
}

// Read parses a serialized header map.
func Read(data []byte) (*Headermap, error) {
	le := binary.LittleEndian
	if len(data) < headerSize || le.Uint32(data) != magic || le.Uint16(data[4:]) != version {
		return nil, errgo.Mask(ErrInvalid, errgo.Any)
	}
	stringsOffset := le.Uint32(data[8:])
	n := le.Uint32(data[16:])
	if uint64(stringsOffset) > uint64(len(data)) || uint64(headerSize)+uint64(n)*bucketSize > uint64(stringsOffset) {
		return nil, errgo.Mask(ErrInvalid, errgo.Any)
	}
	strs := data[stringsOffset:]
	str := func(o uint32) (string, bool) {
		if o >= uint32(len(strs)) {
			return "", false
		}
		end := bytes.IndexByte(strs[o:], 0)
		if end < 0 {
			return "", false
		}
		return string(strs[o : o+uint32(end)]), true
	}

	h := New()
	for i := uint32(0); i < n; i++ {
		b := data[headerSize+i*bucketSize:]
		k := le.Uint32(b)
		if k == emptyBucket {
			continue
		}
		key, ok1 := str(k)
		prefix, ok2 := str(le.Uint32(b[4:]))
		suffix, ok3 := str(le.Uint32(b[8:]))
		if !ok1 || !ok2 || !ok3 {
			return nil, errgo.Notef(ErrInvalid, "bucket %d", i)
		}
		h.Add(key, prefix, suffix)
	}
	return h, nil
}
