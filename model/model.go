package model

import (
	"github.com/google/uuid"
)

// Authenticity is the ground truth of a signature sample, when known.
// It is assigned by a decoder and is independent of any verifier verdict.
type Authenticity string

const (
	AuthenticityGenuine Authenticity = "genuine"
	AuthenticityForged  Authenticity = "forged"
	AuthenticityUnknown Authenticity = "unknown"
)

// ParseAuthenticity validates s against the known authenticity values.
func ParseAuthenticity(s string) (Authenticity, bool) {
	switch Authenticity(s) {
	case AuthenticityGenuine, AuthenticityForged, AuthenticityUnknown:
		return Authenticity(s), true
	}
	return AuthenticityUnknown, false
}

// VerificationStatus is the caller-managed verifier-facing state of a
// signature. Decoders never set it.
type VerificationStatus string

const (
	StatusUnverified VerificationStatus = "unverified"
	StatusTraining   VerificationStatus = "training"
	StatusGenuine    VerificationStatus = "genuine"
	StatusForged     VerificationStatus = "forged"
)

// DataPoint is one sampled instant of pen motion. Immutable once
// produced by a decoder. Units are source-defined; in particular
// pressure ranges differ between datasets (see Signature.Origin).
type DataPoint struct {
	TimeStamp     int64   `json:"timeStamp"`
	XCoord        float64 `json:"xCoord"`
	YCoord        float64 `json:"yCoord"`
	Pressure      float64 `json:"pressure"`
	AltitudeAngle float64 `json:"altitudeAngle"`
	AzimuthAngle  float64 `json:"azimuthAngle"`
	Height        float64 `json:"height"`
	Twist         float64 `json:"twist"`
}

// Signature is one recorded authenticity sample. A signature always
// belongs to exactly one signer.
type Signature struct {
	ID                 string
	Name               string
	Authenticity       Authenticity
	Origin             string
	DataPoints         []DataPoint
	VerificationStatus VerificationStatus
	Signer             *Signer
}

// Signer is one biometric identity owning its signatures. Name is the
// natural merge key across imports.
type Signer struct {
	ID         string
	Name       string
	Signatures []*Signature
}

func NewSigner(name string) *Signer {
	return &Signer{
		ID:   uuid.New().String(),
		Name: name,
	}
}

// AddSignatures appends signatures in order and fixes up their
// back-references.
func (s *Signer) AddSignatures(signatures ...*Signature) {
	for _, signature := range signatures {
		signature.Signer = s
		s.Signatures = append(s.Signatures, signature)
	}
}

// ParseResult is what a decoder hands back to the caller. A signer name
// appears in at most one of the two lists per call.
type ParseResult struct {
	NewSigners               []*Signer
	SignersWithNewSignatures []*Signer
}

// ParsedSignature is the plain decoded form of a signature as it
// crosses the worker boundary.
type ParsedSignature struct {
	Name         string       `json:"name"`
	Authenticity Authenticity `json:"authenticity"`
	Origin       string       `json:"origin"`
	DataPoints   []DataPoint  `json:"dataPoints"`
}

// ParsedSigner groups decoded signatures under a signer name.
type ParsedSigner struct {
	Name       string            `json:"name"`
	Signatures []ParsedSignature `json:"signatures"`
}

// MergeParsed folds decoded signers into the caller's roster. Existing
// signers are matched by exact name and gain the new signatures;
// everything else becomes a new signer. Merging is additive only:
// signatures already owned by an existing signer are never touched.
func MergeParsed(existing []*Signer, parsed []ParsedSigner) *ParseResult {
	result := &ParseResult{}

	for _, parsedSigner := range parsed {
		var signer *Signer
		for _, e := range existing {
			if e.Name == parsedSigner.Name {
				signer = e
				break
			}
		}

		if signer == nil {
			signer = NewSigner(parsedSigner.Name)
			result.NewSigners = append(result.NewSigners, signer)
		} else {
			result.SignersWithNewSignatures = append(result.SignersWithNewSignatures, signer)
		}

		for _, parsedSignature := range parsedSigner.Signatures {
			signature := &Signature{
				ID:                 uuid.New().String(),
				Name:               parsedSignature.Name,
				Authenticity:       parsedSignature.Authenticity,
				Origin:             parsedSignature.Origin,
				DataPoints:         parsedSignature.DataPoints,
				VerificationStatus: StatusUnverified,
			}
			signer.AddSignatures(signature)
		}
	}

	return result
}
