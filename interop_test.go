package xdr

import (
	"bytes"
	"testing"

	xdr2 "github.com/rasky/go-xdr/xdr2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The interop types carry no tags and no pointers: xdr2 reads the same tag
// key with different options and treats pointers as indirection, not as
// optional-data.

type interopInner struct {
	Code  int32
	Label string
}

type interopRecord struct {
	Flag   bool
	Int    int32
	Count  uint32
	Hyper  int64
	UHyper uint64
	Single float32
	Double float64
	Name   string
	Hash   [5]byte
	Blob   []byte
	Items  []uint32
	Pair   [2]int32
	Names  []string
	Inner  interopInner
	Nested []interopInner
}

func sampleInterop() interopRecord {
	return interopRecord{
		Flag:   true,
		Int:    -42,
		Count:  7,
		Hyper:  -1 << 50,
		UHyper: 1<<64 - 1,
		Single: 3.25,
		Double: -0.5,
		Name:   "interop é",
		Hash:   [5]byte{1, 2, 3, 4, 5},
		Blob:   []byte{0xCA, 0xFE, 0xBA},
		Items:  []uint32{10, 20, 30},
		Pair:   [2]int32{-1, 1},
		Names:  []string{"a", "bb", "ccc", "dddd"},
		Inner:  interopInner{Code: 404, Label: "missing"},
		Nested: []interopInner{{Code: 1, Label: "x"}, {Code: 2, Label: "yz"}},
	}
}

func TestInteropEncoding(t *testing.T) {
	in := sampleInterop()

	ours, err := Marshal(&in)
	require.NoError(t, err)

	var ref bytes.Buffer
	n, err := xdr2.Marshal(&ref, &in)
	require.NoError(t, err)
	require.Equal(t, ref.Len(), n)

	assert.Equal(t, ref.Bytes(), ours, "encodings differ from the reference implementation")
}

func TestInteropDecoding(t *testing.T) {
	in := sampleInterop()

	t.Run("ReferenceToOurs", func(t *testing.T) {
		var ref bytes.Buffer
		_, err := xdr2.Marshal(&ref, &in)
		require.NoError(t, err)

		var out interopRecord
		n, err := Unmarshal(ref.Bytes(), &out)
		require.NoError(t, err)
		assert.Equal(t, ref.Len(), n)
		assert.Equal(t, in, out)
	})

	t.Run("OursToReference", func(t *testing.T) {
		data, err := Marshal(&in)
		require.NoError(t, err)

		var out interopRecord
		n, err := xdr2.Unmarshal(bytes.NewReader(data), &out)
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		assert.Equal(t, in, out)
	})
}

func TestInteropPrimitives(t *testing.T) {
	values := []any{
		true,
		int32(-1),
		uint32(0xDEADBEEF),
		int64(-2),
		uint64(1) << 40,
		float32(-1.5),
		float64(1e300),
		"",
		"abc",
		[]byte{},
		[]byte{1, 2, 3, 4, 5},
		[3]byte{9, 8, 7},
	}
	for _, v := range values {
		ours, err := Marshal(v)
		require.NoError(t, err, "%T", v)

		var ref bytes.Buffer
		_, err = xdr2.Marshal(&ref, v)
		require.NoError(t, err, "%T", v)

		assert.Equal(t, ref.Bytes(), ours, "%T %v", v, v)
	}
}
