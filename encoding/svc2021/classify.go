// Package svc2021 decodes the SVC-2021 / DeepSignDB zip archive: many
// per-signer signature files spread across several historical
// sub-databases, each with its own column layout and quirks.
package svc2021

import (
	"strings"

	"github.com/pkg/errors"

	"siginspect/model"
)

// Database identifies the historical sub-database a signature file was
// collected for. Each one has its own pressure column and pressure
// unit range.
type Database int

const (
	DatabaseUnknown Database = iota
	Mcyt
	BioSecureID
	BioSecureDS2
	EBioSignDS1
	EBioSignDS2
	EvalDB
)

func (d Database) String() string {
	switch d {
	case Mcyt:
		return "DeepSignDB MCYT"
	case BioSecureID:
		return "DeepSignDB BiosecureID"
	case BioSecureDS2:
		return "DeepSignDB BiosecurDS2"
	case EBioSignDS1:
		return "DeepSignDB eBioSignDS1"
	case EBioSignDS2:
		return "DeepSignDB eBioSignDS2"
	case EvalDB:
		return "DeepSignDB SVC2021 Eval"
	}
	return "DeepSignDB"
}

// pressureColumn is the zero-based column holding pressure in a data
// line of the given sub-database.
func (d Database) pressureColumn() (int, error) {
	switch d {
	case Mcyt:
		return 5, nil
	case BioSecureID, BioSecureDS2:
		return 6, nil
	case EBioSignDS1, EBioSignDS2, EvalDB:
		return 3, nil
	}
	return 0, errors.Errorf("unsupported database: %d", int(d))
}

// Split is the dataset partition a file belongs to.
type Split int

const (
	SplitUnknown Split = iota
	Development
	Evaluation
)

// InputDevice is the capture device of a signature file.
type InputDevice int

const (
	DeviceUnknown InputDevice = iota
	Finger
	Stylus
)

// PathKind tags the two path shapes found in the archive.
type PathKind int

const (
	// PathModern is the {split}/{device}/u{signer}_{origin}_{rest} layout.
	PathModern PathKind = iota
	// PathLegacy is the flat "signature..." naming of the raw
	// evaluation set: no split/device/origin information at all.
	PathLegacy
)

// PathShape is the classification of one archive entry path.
type PathShape struct {
	Kind        PathKind
	Split       Split
	Device      InputDevice
	SignerID    string
	SignatureID string
	Origin      model.Authenticity
}

// ClassifyPath classifies an archive entry path into its tagged shape.
// Modern paths are decomposed from fixed segments and the
// underscore-delimited file name; legacy paths collapse to a
// degenerate shape with unknown origin and device.
func ClassifyPath(entryPath string) (PathShape, error) {
	normalized := strings.ReplaceAll(entryPath, "\\", "/")
	segments := strings.Split(normalized, "/")
	fileName := segments[len(segments)-1]

	if strings.Contains(entryPath, "signature") {
		return PathShape{
			Kind:        PathLegacy,
			Split:       Evaluation,
			Device:      DeviceUnknown,
			SignerID:    fileName,
			SignatureID: fileName,
			Origin:      model.AuthenticityUnknown,
		}, nil
	}

	if len(segments) < 3 {
		return PathShape{}, errors.Errorf("unrecognized path shape: %s", entryPath)
	}

	split, err := parseSplit(segments[len(segments)-3])
	if err != nil {
		return PathShape{}, errors.Wrapf(err, "classifying %s", entryPath)
	}

	device, err := parseDevice(segments[len(segments)-2])
	if err != nil {
		return PathShape{}, errors.Wrapf(err, "classifying %s", entryPath)
	}

	parts := strings.Split(fileName, "_")
	if len(parts) < 2 {
		return PathShape{}, errors.Errorf("unrecognized file name shape: %s", entryPath)
	}

	var origin model.Authenticity
	switch parts[1] {
	case "g":
		origin = model.AuthenticityGenuine
	case "s":
		origin = model.AuthenticityForged
	default:
		return PathShape{}, errors.Errorf("unsupported origin: %s", parts[1])
	}

	return PathShape{
		Kind:        PathModern,
		Split:       split,
		Device:      device,
		SignerID:    strings.TrimPrefix(parts[0], "u"),
		SignatureID: strings.Join(segments[len(segments)-3:], "/"),
		Origin:      origin,
	}, nil
}

func parseSplit(s string) (Split, error) {
	switch strings.ToLower(s) {
	case "development":
		return Development, nil
	case "evaluation":
		return Evaluation, nil
	}
	return SplitUnknown, errors.Errorf("unknown split: %s", s)
}

func parseDevice(s string) (InputDevice, error) {
	switch strings.ToLower(s) {
	case "finger":
		return Finger, nil
	case "stylus":
		return Stylus, nil
	}
	return DeviceUnknown, errors.Errorf("unknown input device: %s", s)
}

// signerRange is one row of the sub-database decision table: signer id
// ranges are disjoint inclusive bounds per (split, device) pair.
// Bounds compare as strings, which is exact for the zero-padded ids
// the archive uses.
type signerRange struct {
	split    Split
	device   InputDevice
	low      string
	high     string
	database Database
}

var signerRanges = []signerRange{
	{Development, Finger, "1009", "1038", EBioSignDS1},
	{Development, Finger, "1039", "1084", EBioSignDS2},
	{Development, Stylus, "0001", "0230", Mcyt},
	{Development, Stylus, "0231", "0498", BioSecureID},
	{Development, Stylus, "1009", "1038", EBioSignDS1},
	{Development, Stylus, "1039", "1084", EBioSignDS2},
	{Evaluation, Finger, "0373", "0407", EBioSignDS1},
	{Evaluation, Finger, "0408", "0442", EBioSignDS2},
	{Evaluation, Stylus, "0001", "0100", Mcyt},
	{Evaluation, Stylus, "0101", "0232", BioSecureID},
	{Evaluation, Stylus, "0233", "0372", BioSecureDS2},
	{Evaluation, Stylus, "0373", "0407", EBioSignDS1},
	{Evaluation, Stylus, "0408", "0442", EBioSignDS2},
}

// ResolveDatabase looks up the sub-database for a classified path.
// Legacy paths always belong to the raw evaluation set. A modern path
// whose signer id falls outside every known range is a hard error.
func ResolveDatabase(shape PathShape) (Database, error) {
	if shape.Kind == PathLegacy {
		return EvalDB, nil
	}

	for _, r := range signerRanges {
		if r.split != shape.Split || r.device != shape.Device {
			continue
		}
		if shape.SignerID >= r.low && shape.SignerID <= r.high {
			return r.database, nil
		}
	}

	return DatabaseUnknown, errors.Errorf("undefined database for signature: %s", shape.SignatureID)
}
