package rpm

import (
	"bytes"
	"encoding/binary"
	"sort"
)

type entry struct {
	tag   int32
	typ   uint32
	count uint32
	data  []byte
}

// header collects tag values and serializes them as an RPM header
// structure with a leading region tag.
type header struct {
	entries map[int32]entry
}

func newHeader() *header {
	return &header{entries: make(map[int32]entry)}
}

func (h *header) add(tag int32, typ uint32, count int, data []byte) {
	h.entries[tag] = entry{tag: tag, typ: typ, count: uint32(count), data: data}
}

func (h *header) addString(tag int32, s string) {
	h.add(tag, typeString, 1, append([]byte(s), 0))
}

func (h *header) addI18NString(tag int32, s string) {
	h.add(tag, typeI18NString, 1, append([]byte(s), 0))
}

func (h *header) addStringArray(tag int32, values []string) {
	var buf bytes.Buffer
	for _, v := range values {
		buf.WriteString(v)
		buf.WriteByte(0)
	}
	h.add(tag, typeStringArray, len(values), buf.Bytes())
}

func (h *header) addInt32(tag int32, values ...uint32) {
	data := make([]byte, 4*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint32(data[4*i:], v)
	}
	h.add(tag, typeInt32, len(values), data)
}

func (h *header) addInt16(tag int32, values ...uint16) {
	data := make([]byte, 2*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint16(data[2*i:], v)
	}
	h.add(tag, typeInt16, len(values), data)
}

func (h *header) addBin(tag int32, data []byte) {
	h.add(tag, typeBin, len(data), data)
}

// marshal writes the header with region as its first index entry. The
// region trailer sits at the end of the data store.
func (h *header) marshal(region int32) []byte {
	tags := make([]int32, 0, len(h.entries))
	for tag := range h.entries {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	var (
		index bytes.Buffer
		store bytes.Buffer
	)
	writeIndex := func(e entry, offset int) {
		binary.Write(&index, binary.BigEndian, e.tag)
		binary.Write(&index, binary.BigEndian, e.typ)
		binary.Write(&index, binary.BigEndian, int32(offset))
		binary.Write(&index, binary.BigEndian, e.count)
	}

	for _, tag := range tags {
		e := h.entries[tag]
		if a, ok := alignment[e.typ]; ok {
			for store.Len()%a != 0 {
				store.WriteByte(0)
			}
		}
		writeIndex(e, store.Len())
		store.Write(e.data)
	}

	nindex := len(tags) + 1
	trailerOffset := store.Len()
	binary.Write(&store, binary.BigEndian, region)
	binary.Write(&store, binary.BigEndian, uint32(typeBin))
	binary.Write(&store, binary.BigEndian, int32(-16*nindex))
	binary.Write(&store, binary.BigEndian, uint32(16))

	var out bytes.Buffer
	out.Write(headerMagic)
	out.Write([]byte{0, 0, 0, 0})
	binary.Write(&out, binary.BigEndian, uint32(nindex))
	binary.Write(&out, binary.BigEndian, uint32(store.Len()))
	binary.Write(&out, binary.BigEndian, region)
	binary.Write(&out, binary.BigEndian, uint32(typeBin))
	binary.Write(&out, binary.BigEndian, int32(trailerOffset))
	binary.Write(&out, binary.BigEndian, uint32(16))
	out.Write(index.Bytes())
	out.Write(store.Bytes())
	return out.Bytes()
}
