package svc2004

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siginspect/model"
)

// buildFile declares count points and emits exactly count content
// lines in the source column order: x y t button azimuth altitude
// pressure.
func buildFile(count int) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", count)
	for i := 0; i < count; i++ {
		fmt.Fprintf(&b, "%d %d %d 1 %d %d %d\n", 100+i, 200+i, i*10, 30+i, 40+i, 500+i)
	}
	return []byte(b.String())
}

func TestDecodePreservesOffByOneConvention(t *testing.T) {
	signer, err := Decode("U02S21.TXT", buildFile(21))
	require.NoError(t, err)

	assert.Equal(t, "SVC2004 U02", signer.Name)
	require.Len(t, signer.Signatures, 1)

	signature := signer.Signatures[0]
	assert.Equal(t, "21", signature.Name)
	assert.Equal(t, model.AuthenticityForged, signature.Authenticity)
	assert.Equal(t, Origin, signature.Origin)

	// Declared 21 points, decoded 20: the source database's
	// inclusive-exclusive convention.
	assert.Len(t, signature.DataPoints, 20)
}

func TestDecodeColumnMapping(t *testing.T) {
	signer, err := Decode("U05S03.TXT", buildFile(3))
	require.NoError(t, err)

	signature := signer.Signatures[0]
	assert.Equal(t, model.AuthenticityGenuine, signature.Authenticity)

	first := signature.DataPoints[0]
	assert.Equal(t, model.DataPoint{
		TimeStamp:     0,
		XCoord:        100,
		YCoord:        200,
		Pressure:      500,
		AltitudeAngle: 40,
		AzimuthAngle:  30,
	}, first)
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		fileName string
		signerID string
		index    int
		wantErr  bool
	}{
		{fileName: "U02S21.TXT", signerID: "02", index: 21},
		{fileName: "data/U13S5.txt", signerID: "13", index: 5},
		{fileName: "U1S20.TXT", signerID: "1", index: 20},
		{fileName: "garbage.txt", wantErr: true},
		{fileName: "U02Sx.TXT", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			identity, err := ParseFileName(tt.fileName)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.signerID, identity.SignerID)
			assert.Equal(t, tt.index, identity.SignatureIndex)
		})
	}
}

func TestGenuineCutoff(t *testing.T) {
	assert.Equal(t, model.AuthenticityGenuine, Identity{SignatureIndex: 20}.Authenticity())
	assert.Equal(t, model.AuthenticityForged, Identity{SignatureIndex: 21}.Authenticity())
}

func TestDecodeRejectsBadPointCount(t *testing.T) {
	_, err := Decode("U02S01.TXT", []byte("twenty\n1 2 3 4 5 6 7\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "point count")
}

func TestDecodeRejectsShortLines(t *testing.T) {
	_, err := Decode("U02S01.TXT", []byte("3\n1 2 3\n1 2 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "columns")
}

func TestDecodeRejectsEmptySignature(t *testing.T) {
	// A declared count of 1 decodes zero points under the N-1
	// convention; a count of 0 declares none at all. Neither may
	// produce a signature.
	for _, file := range [][]byte{buildFile(1), buildFile(0)} {
		_, err := Decode("U02S01.TXT", file)
		require.Error(t, err)
		assert.Equal(t, "no points were loaded for signature: U02S01.TXT", err.Error())
	}
}

func TestDecodeRejectsCountBeyondFile(t *testing.T) {
	_, err := Decode("U02S01.TXT", []byte("5\n1 2 3 4 5 6 7\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared 5 points")
}
