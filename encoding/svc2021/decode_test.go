package svc2021

import (
	"archive/zip"
	"bytes"
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siginspect/model"
)

func stylusShape(signerID string) PathShape {
	return PathShape{
		Kind:        PathModern,
		Split:       Development,
		Device:      Stylus,
		SignerID:    signerID,
		SignatureID: "Development/stylus/u" + signerID + "_g_0001.txt",
		Origin:      model.AuthenticityGenuine,
	}
}

// Mcyt data lines: x y t azimuth altitude pressure (pressure column 5).
const mcytFile = "6\n" +
	"10 20 100 0 0 0\n" +
	"11 21 110 0 0 500\n" +
	"12 22 120 0 0 510\n" +
	"13 23 130 0 0 520\n" +
	"14 24 140 0 0 0\n"

func TestDecodeSignatureTrimsStylusNoise(t *testing.T) {
	signature, err := DecodeSignature(stylusShape("0001"), []byte(mcytFile))
	require.NoError(t, err)

	// Leading and trailing zero-pressure samples are pre/post-contact
	// noise for stylus input.
	require.Len(t, signature.DataPoints, 3)
	assert.Equal(t, int64(110), signature.DataPoints[0].TimeStamp)
	assert.Equal(t, int64(130), signature.DataPoints[2].TimeStamp)
	assert.Equal(t, model.AuthenticityGenuine, signature.Authenticity)
	assert.Equal(t, "DeepSignDB MCYT", signature.Origin)
}

func TestDecodeSignatureRemovesDuplicateTimestamps(t *testing.T) {
	file := "5\n" +
		"10 20 100 0 0 500\n" +
		"11 21 100 0 0 510\n" +
		"12 22 100 0 0 520\n" +
		"13 23 200 0 0 530\n"

	signature, err := DecodeSignature(stylusShape("0001"), []byte(file))
	require.NoError(t, err)

	require.Len(t, signature.DataPoints, 2)
	assert.Equal(t, int64(100), signature.DataPoints[0].TimeStamp)
	assert.Equal(t, int64(200), signature.DataPoints[1].TimeStamp)
	// The first sample of a duplicate run survives.
	assert.Equal(t, float64(10), signature.DataPoints[0].XCoord)
}

func TestDecodeSignatureRetimestampsMissingTimestamps(t *testing.T) {
	shape := PathShape{
		Kind:        PathLegacy,
		Split:       Evaluation,
		Device:      DeviceUnknown,
		SignerID:    "signature_0001.txt",
		SignatureID: "signature_0001.txt",
		Origin:      model.AuthenticityUnknown,
	}
	// EvalDB pressure column is 3; zero pressure everywhere makes this
	// a finger signature, so no trimming applies.
	file := "3\n" +
		"10 20 0 0\n" +
		"11 21 0 0\n" +
		"12 22 0 0\n"

	signature, err := DecodeSignature(shape, []byte(file))
	require.NoError(t, err)

	require.Len(t, signature.DataPoints, 3)
	assert.Equal(t, int64(0), signature.DataPoints[0].TimeStamp)
	assert.Equal(t, int64(10), signature.DataPoints[1].TimeStamp)
	assert.Equal(t, int64(20), signature.DataPoints[2].TimeStamp)
}

func TestDecodeSignatureInfersStylusFromPressure(t *testing.T) {
	shape := PathShape{
		Kind:        PathLegacy,
		SignerID:    "signature_0002.txt",
		SignatureID: "signature_0002.txt",
	}
	file := "3\n" +
		"10 20 100 0\n" +
		"11 21 110 700\n" +
		"12 22 120 0\n"

	signature, err := DecodeSignature(shape, []byte(file))
	require.NoError(t, err)

	// Non-zero pressure means stylus, and stylus trimming strips the
	// zero-pressure edges.
	require.Len(t, signature.DataPoints, 1)
	assert.Equal(t, float64(700), signature.DataPoints[0].Pressure)
}

func TestDecodeSignatureRejectsAllZeroPressureStylus(t *testing.T) {
	file := "3\n" +
		"10 20 100 0 0 0\n" +
		"11 21 110 0 0 0\n"

	_, err := DecodeSignature(stylusShape("0001"), []byte(file))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no points were loaded")
}

func TestDecodeSignatureRejectsBadColumns(t *testing.T) {
	_, err := DecodeSignature(stylusShape("0001"), []byte("2\n10 20\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing signature")
}

func buildArchive(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(f, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func testEntries() map[string]string {
	line := func(t int) string { return "10 20 " + strconv.Itoa(t) + " 0 0 500\n" }
	content := "3\n" + line(100) + line(110) + line(120)
	return map[string]string{
		"DeepSignDB/Development/stylus/u0001_g_0001.txt": content,
		"DeepSignDB/Development/stylus/u0001_s_0002.txt": content,
		"DeepSignDB/Development/stylus/u0231_g_0001.txt": "3\n10 20 100 0 0 0 600\n10 20 110 0 0 0 610\n",
		"DeepSignDB/README":                              "not a signature",
		"DeepSignDB/Development/stylus/notes.md":         "skipped, wrong extension",
	}
}

func TestDecodeArchiveGroupsBySigner(t *testing.T) {
	data := buildArchive(t, testEntries())

	signers, err := DecodeArchive(data, nil, 2)
	require.NoError(t, err)
	require.Len(t, signers, 2)

	bySigner := make(map[string]model.ParsedSigner)
	for _, s := range signers {
		bySigner[s.Name] = s
	}

	u1, ok := bySigner["DeepSign 0001"]
	require.True(t, ok)
	require.Len(t, u1.Signatures, 2)
	// Ordered by signature id within a signer.
	assert.Equal(t, "Development/stylus/u0001_g_0001.txt", u1.Signatures[0].Name)
	assert.Equal(t, "Development/stylus/u0001_s_0002.txt", u1.Signatures[1].Name)
	assert.Equal(t, model.AuthenticityGenuine, u1.Signatures[0].Authenticity)
	assert.Equal(t, model.AuthenticityForged, u1.Signatures[1].Authenticity)

	u231, ok := bySigner["DeepSign 0231"]
	require.True(t, ok)
	require.Len(t, u231.Signatures, 1)
	// BiosecureID pressure lives in column 6.
	assert.Equal(t, float64(600), u231.Signatures[0].DataPoints[0].Pressure)
}

func TestDecodeArchiveIsIdempotent(t *testing.T) {
	data := buildArchive(t, testEntries())

	first, err := DecodeArchive(data, nil, 1)
	require.NoError(t, err)
	second, err := DecodeArchive(data, nil, 4)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, len(first[i].Signatures), len(second[i].Signatures))
	}
}

func TestDecodeArchiveSignerFilter(t *testing.T) {
	data := buildArchive(t, testEntries())

	all, err := DecodeArchive(data, nil, 2)
	require.NoError(t, err)

	filtered, err := DecodeArchive(data, []string{"0231"}, 2)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "DeepSign 0231", filtered[0].Name)

	// The filtered result is a strict subset of the unfiltered one.
	var match *model.ParsedSigner
	for i := range all {
		if all[i].Name == filtered[0].Name {
			match = &all[i]
		}
	}
	require.NotNil(t, match)
	assert.Equal(t, len(match.Signatures), len(filtered[0].Signatures))
}

func TestDecodeArchiveFailsWholeParseOnOneBadFile(t *testing.T) {
	entries := testEntries()
	entries["DeepSignDB/Development/stylus/u0001_x_0003.txt"] = "1\n"

	_, err := DecodeArchive(buildArchive(t, entries), nil, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported origin")
}

func TestDecodeArchiveRejectsGarbage(t *testing.T) {
	_, err := DecodeArchive([]byte("this is not a zip"), nil, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot open archive")
}
