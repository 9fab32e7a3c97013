// Package svc2004 decodes the SVC-2004 pen-tablet text format: a
// declared point count on the first line followed by space-delimited
// feature columns, with signer and signature identity encoded in the
// file name (e.g. U02S21.TXT).
package svc2004

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"siginspect/model"
)

// Origin tags every signature decoded from this format.
const Origin = "SVC2004"

// genuineCutoff splits a signer's samples: signature indices below it
// are genuine recordings, the rest are skilled forgeries. The SVC-2004
// database ships 20 genuine samples followed by 20 forgeries.
const genuineCutoff = 21

// Columns consumed per data line. The source files also carry a button
// column (index 3) which is not part of the data model.
const (
	colX        = 0
	colY        = 1
	colTime     = 2
	colAzimuth  = 4
	colAltitude = 5
	colPressure = 6
)

// Identity is the signer/signature identity derived from a file name.
type Identity struct {
	SignerID       string
	SignatureIndex int
}

// SignerName returns the roster-facing name for the signer.
func (id Identity) SignerName() string {
	return "SVC2004 U" + id.SignerID
}

// Authenticity derives the sample's ground truth from its position in
// the database.
func (id Identity) Authenticity() model.Authenticity {
	if id.SignatureIndex < genuineCutoff {
		return model.AuthenticityGenuine
	}
	return model.AuthenticityForged
}

// ParseFileName splits a name like U02S21.TXT into its identity parts.
func ParseFileName(fileName string) (Identity, error) {
	name := fileName
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".TXT")
	name = strings.TrimSuffix(name, ".txt")
	name = strings.TrimPrefix(name, "U")

	parts := strings.SplitN(name, "S", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Identity{}, errors.Errorf("cannot derive signer from file name: %s", fileName)
	}

	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return Identity{}, errors.Errorf("cannot derive signature index from file name: %s", fileName)
	}

	return Identity{SignerID: parts[0], SignatureIndex: index}, nil
}

// Decode parses one SVC-2004 file into a single parsed signer holding
// a single signature. The declared point count N on the first line is
// honoured the way the source database readers did: lines 1 through
// N-1 are decoded, dropping the final declared point.
func Decode(fileName string, data []byte) (model.ParsedSigner, error) {
	identity, err := ParseFileName(fileName)
	if err != nil {
		return model.ParsedSigner{}, err
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	count, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return model.ParsedSigner{}, errors.Errorf("%s: first line is not a point count: %q", fileName, lines[0])
	}

	if count > len(lines) {
		return model.ParsedSigner{}, errors.Errorf("%s: declared %d points but file has %d lines", fileName, count, len(lines)-1)
	}

	dataPoints := make([]model.DataPoint, 0, count)
	for i := 1; i < count; i++ {
		point, err := decodeLine(lines[i])
		if err != nil {
			return model.ParsedSigner{}, errors.Wrapf(err, "%s: line %d", fileName, i+1)
		}
		dataPoints = append(dataPoints, point)
	}

	if len(dataPoints) == 0 {
		return model.ParsedSigner{}, errors.Errorf("no points were loaded for signature: %s", fileName)
	}

	signature := model.ParsedSignature{
		Name:         strconv.Itoa(identity.SignatureIndex),
		Authenticity: identity.Authenticity(),
		Origin:       Origin,
		DataPoints:   dataPoints,
	}

	return model.ParsedSigner{
		Name:       identity.SignerName(),
		Signatures: []model.ParsedSignature{signature},
	}, nil
}

func decodeLine(line string) (model.DataPoint, error) {
	fields := strings.Fields(line)
	if len(fields) <= colPressure {
		return model.DataPoint{}, errors.Errorf("expected at least %d columns, got %d", colPressure+1, len(fields))
	}

	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return model.DataPoint{}, errors.Errorf("column %d is not numeric: %q", i, field)
		}
		values[i] = v
	}

	return model.DataPoint{
		TimeStamp:     int64(values[colTime]),
		XCoord:        values[colX],
		YCoord:        values[colY],
		Pressure:      values[colPressure],
		AltitudeAngle: values[colAltitude],
		AzimuthAngle:  values[colAzimuth],
	}, nil
}
