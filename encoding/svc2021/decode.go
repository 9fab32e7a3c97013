package svc2021

import (
	"archive/zip"
	"bytes"
	"context"
	"io/ioutil"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"siginspect/model"
)

// retimestampStep is the uniform timestamp step applied when a source
// file carries no timestamps at all.
const retimestampStep = 10

// point is one raw sample before it is lifted into the data model.
type point struct {
	x        int64
	y        int64
	t        int64
	pressure float64
}

// DecodeArchive parses a whole DeepSignDB zip. Signatures are grouped
// by signer id across the entire archive and ordered by signature id
// within a signer. A non-empty signerIDs filter skips every other
// signer before any per-file work happens. A single bad file fails the
// whole parse: imports are all-or-nothing.
//
// Signer groups decode concurrently, at most batchSize at a time, but
// the returned slice always follows first-seen signer order.
func DecodeArchive(data []byte, signerIDs []string, batchSize int64) ([]model.ParsedSigner, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "cannot open archive")
	}

	groups, order, err := groupEntries(reader, signerIDs)
	if err != nil {
		return nil, err
	}

	if batchSize < 1 {
		batchSize = 1
	}

	ctx := context.TODO()
	sem := semaphore.NewWeighted(batchSize)
	signers := make([]model.ParsedSigner, len(order))
	failures := make([]error, len(order))

	for i, signerID := range order {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		go func(i int, signerID string) {
			defer sem.Release(1)
			signers[i], failures[i] = decodeSignerGroup(signerID, groups[signerID])
		}(i, signerID)
	}

	// Wait for all goroutines to finish.
	if err := sem.Acquire(ctx, batchSize); err != nil {
		return nil, err
	}

	for _, err := range failures {
		if err != nil {
			return nil, err
		}
	}

	return signers, nil
}

type entry struct {
	shape PathShape
	file  *zip.File
}

// groupEntries classifies every signature file in the archive and
// groups it by signer id, preserving first-seen signer order.
func groupEntries(reader *zip.Reader, signerIDs []string) (map[string][]entry, []string, error) {
	filter := make(map[string]bool, len(signerIDs))
	for _, id := range signerIDs {
		filter[id] = true
	}

	groups := make(map[string][]entry)
	var order []string

	for _, file := range reader.File {
		if !strings.HasPrefix(file.Name, "DeepSignDB") || !strings.HasSuffix(file.Name, ".txt") {
			continue
		}

		shape, err := ClassifyPath(file.Name)
		if err != nil {
			return nil, nil, err
		}

		if len(filter) > 0 && !filter[shape.SignerID] {
			continue
		}

		if _, seen := groups[shape.SignerID]; !seen {
			order = append(order, shape.SignerID)
		}
		groups[shape.SignerID] = append(groups[shape.SignerID], entry{shape: shape, file: file})
	}

	return groups, order, nil
}

func decodeSignerGroup(signerID string, entries []entry) (model.ParsedSigner, error) {
	signer := model.ParsedSigner{Name: "DeepSign " + signerID}

	for _, e := range entries {
		contents, err := readEntry(e.file)
		if err != nil {
			return model.ParsedSigner{}, err
		}

		signature, err := DecodeSignature(e.shape, contents)
		if err != nil {
			return model.ParsedSigner{}, err
		}
		signer.Signatures = append(signer.Signatures, signature)
	}

	sort.Slice(signer.Signatures, func(i, j int) bool {
		return signer.Signatures[i].Name < signer.Signatures[j].Name
	})

	return signer, nil
}

func readEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open archive entry %s", file.Name)
	}
	defer rc.Close()

	contents, err := ioutil.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read archive entry %s", file.Name)
	}
	return contents, nil
}

// DecodeSignature decodes one signature file that was already
// classified. The cleanup pipeline runs in a fixed order:
// re-timestamping, duplicate removal, device inference, stylus noise
// trimming. A signature left with zero points is a decode error, not
// an empty entity.
func DecodeSignature(shape PathShape, contents []byte) (model.ParsedSignature, error) {
	database, err := ResolveDatabase(shape)
	if err != nil {
		return model.ParsedSignature{}, err
	}

	pressureColumn, err := database.pressureColumn()
	if err != nil {
		return model.ParsedSignature{}, err
	}

	points, err := parseLines(contents, pressureColumn)
	if err != nil {
		return model.ParsedSignature{}, errors.Wrapf(err, "error parsing signature: %s", shape.SignatureID)
	}

	// Some evaluation files have no timestamps at all; fill them in
	// uniformly by position.
	allZero := true
	for _, p := range points {
		if p.t != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		for i := range points {
			points[i].t = int64(i) * retimestampStep
		}
	}

	// Equal consecutive timestamps carry no physical meaning; drop the
	// second sample until none remain.
	for i := 0; i < len(points)-1; i++ {
		if points[i].t != points[i+1].t {
			continue
		}
		points = append(points[:i+1], points[i+2:]...)
		i--
	}

	device := shape.Device
	if device == DeviceUnknown {
		device = Stylus
		zeroPressure := true
		for _, p := range points {
			if p.pressure != 0 {
				zeroPressure = false
				break
			}
		}
		if zeroPressure {
			device = Finger
		}
	}

	if device == Stylus {
		// Zero-pressure samples at either end are pre/post-contact noise.
		for len(points) > 0 && points[0].pressure == 0 {
			points = points[1:]
		}
		for len(points) > 0 && points[len(points)-1].pressure == 0 {
			points = points[:len(points)-1]
		}
	}

	if len(points) == 0 {
		return model.ParsedSignature{}, errors.Errorf("no points were loaded for signature: %s", shape.SignatureID)
	}

	dataPoints := make([]model.DataPoint, len(points))
	for i, p := range points {
		dataPoints[i] = model.DataPoint{
			TimeStamp: p.t,
			XCoord:    float64(p.x),
			YCoord:    float64(p.y),
			Pressure:  p.pressure,
		}
	}

	return model.ParsedSignature{
		Name:         shape.SignatureID,
		Authenticity: shape.Origin,
		Origin:       database.String(),
		DataPoints:   dataPoints,
	}, nil
}

// parseLines reads the data lines of a signature file, skipping the
// header line and empty lines.
func parseLines(contents []byte, pressureColumn int) ([]point, error) {
	lines := strings.Split(strings.ReplaceAll(string(contents), "\r\n", "\n"), "\n")

	points := make([]point, 0, len(lines))
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(strings.TrimSpace(line), " ")
		if len(fields) <= pressureColumn {
			return nil, errors.Errorf("line %d: expected at least %d columns, got %d", i+1, pressureColumn+1, len(fields))
		}

		x, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, errors.Errorf("line %d: bad x value %q", i+1, fields[0])
		}
		y, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, errors.Errorf("line %d: bad y value %q", i+1, fields[1])
		}
		t, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, errors.Errorf("line %d: bad timestamp %q", i+1, fields[2])
		}
		pressure, err := strconv.ParseFloat(fields[pressureColumn], 64)
		if err != nil {
			return nil, errors.Errorf("line %d: bad pressure %q", i+1, fields[pressureColumn])
		}

		points = append(points, point{x: x, y: y, t: t, pressure: pressure})
	}

	return points, nil
}
