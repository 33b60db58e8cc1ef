package he

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestPair builds a client for the preset and a server loaded with its evaluation keys.
func newTestPair(t *testing.T, id ParameterSetIdentifier) (*ClientContext, *ServerContext) {
	t.Helper()

	ps, err := GetParameterSet(id)
	require.NoError(t, err)

	client, err := NewClientContext(ps.PolyModulusDegree, ps.PlainModulusBitSize, int(ps.SecurityLevel), "zstd")
	require.NoError(t, err)

	server, err := NewServerContext(ps.PolyModulusDegree, ps.PlainModulusBitSize, int(ps.SecurityLevel), "zstd")
	require.NoError(t, err)

	blob, err := client.SerializeEvaluationKeys()
	require.NoError(t, err)

	server, err = server.WithEvaluationKeys(blob)
	require.NoError(t, err)

	return client, server
}

// testValues returns n values in [0, t) that are distinct enough to catch slot mix-ups.
func testValues(n int, t uint64) []uint64 {
	values := make([]uint64, n)
	for i := range values {
		values[i] = (uint64(i)*7919 + 13) % t
	}
	return values
}
