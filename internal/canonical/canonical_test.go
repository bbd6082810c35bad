package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_SortsObjectKeys(t *testing.T) {
	obj := Object{
		"zebra":    "last",
		"alpha":    "first",
		"provider": "greenhouse",
	}

	data, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":"first","provider":"greenhouse","zebra":"last"}`, string(data))
}

func TestMarshal_NestedStructures(t *testing.T) {
	obj := Object{
		"records": Array{
			Object{"title": "engineer", "seq": 1},
			Object{"title": "analyst", "seq": 2},
		},
		"count": 2,
	}

	data, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"count":2,"records":[{"seq":1,"title":"engineer"},{"seq":2,"title":"analyst"}]}`, string(data))
}

func TestMarshal_RejectsFloats(t *testing.T) {
	_, err := Marshal(Object{"score": 72.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}

func TestMarshal_RejectsNull(t *testing.T) {
	_, err := Marshal(Object{"missing": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null is forbidden")
}

func TestMarshal_DecimalFormatting(t *testing.T) {
	tests := []struct {
		name string
		cp   Decimal
		want string
	}{
		{"whole", Decimal(7200), "72.00"},
		{"half", Decimal(7250), "72.50"},
		{"single fraction digit", Decimal(7205), "72.05"},
		{"zero", Decimal(0), "0.00"},
		{"negative", Decimal(-325), "-3.25"},
		{"hundred", Decimal(10000), "100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.cp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestMarshal_StringNFCNormalization(t *testing.T) {
	// "é" composed (U+00E9) vs decomposed (e + U+0301) must produce the
	// same bytes after NFC normalization.
	composed, err := Marshal("café")
	require.NoError(t, err)
	decomposed, err := Marshal("café")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	data, err := Marshal("<b>Senior</b> & more")
	require.NoError(t, err)
	assert.Equal(t, `"<b>Senior</b> & more"`, string(data))
}

func TestMarshal_ControlCharacterEscaping(t *testing.T) {
	data, err := Marshal("line1\nline2\ttab")
	require.NoError(t, err)
	assert.Equal(t, `"line1\nline2\ttab"`, string(data))
}

func TestHash_DomainSeparation(t *testing.T) {
	obj := Object{"provider": "lever", "external_id": "123"}

	identityHash, err := Hash(DomainIdentity, obj)
	require.NoError(t, err)
	fingerprintHash, err := Hash(DomainFingerprint, obj)
	require.NoError(t, err)

	assert.NotEqual(t, identityHash, fingerprintHash)
	assert.Len(t, identityHash, 64)
}

func TestHash_Deterministic(t *testing.T) {
	obj := Object{"title": "Platform Engineer", "location": "Remote"}

	first, err := Hash(DomainFingerprint, obj)
	require.NoError(t, err)
	second, err := Hash(DomainFingerprint, obj)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
