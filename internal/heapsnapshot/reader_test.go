package heapsnapshot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSnapshot = `
{"kind":"object","address":256,"size":10,"type_name":"Root"}
{"kind":"object","address":512,"size":20}
{"kind":"reference","from":256,"to":512}
{"kind":"root","root_address":256}
`

func TestLoad_ParsesAllRecordKinds(t *testing.T) {
	snap, err := Load(strings.NewReader(sampleSnapshot))
	require.NoError(t, err)

	var objects []objectRecord
	require.NoError(t, snap.EnumerateObjects(context.Background(), func(addr, size uint64) error {
		objects = append(objects, objectRecord{Address: addr, Size: size})
		return nil
	}))
	assert.Len(t, objects, 2)

	var refs []referenceRecord
	require.NoError(t, snap.EnumerateReferences(context.Background(), func(from, to uint64) error {
		refs = append(refs, referenceRecord{From: from, To: to})
		return nil
	}))
	require.Len(t, refs, 1)
	assert.EqualValues(t, 256, refs[0].From)
	assert.EqualValues(t, 512, refs[0].To)

	var roots []uint64
	require.NoError(t, snap.EnumerateRoots(context.Background(), func(addr uint64) error {
		roots = append(roots, addr)
		return nil
	}))
	require.Len(t, roots, 1)
	assert.EqualValues(t, 256, roots[0])

	assert.Equal(t, "Root", snap.TypeName(256))
	assert.Equal(t, "", snap.TypeName(512))
}

func TestLoad_SkipsBlankLines(t *testing.T) {
	snap, err := Load(strings.NewReader("\n\n" + `{"kind":"object","address":1,"size":1}` + "\n\n"))
	require.NoError(t, err)
	assert.Len(t, snap.objects, 1)
}

func TestLoad_UnknownKind_ReturnsError(t *testing.T) {
	_, err := Load(strings.NewReader(`{"kind":"bogus"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown record kind")
}

func TestLoad_InvalidJSON_ReturnsError(t *testing.T) {
	_, err := Load(strings.NewReader(`not json`))
	require.Error(t, err)
}
