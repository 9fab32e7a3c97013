// Package sigjson decodes the signature-inspector JSON dump format: a
// top-level array of signature objects. The format predates signer
// support, so every decoded signature lands on a single synthetic
// signer named "Signer".
package sigjson

import (
	"encoding/json"

	"github.com/pkg/errors"

	"siginspect/model"
)

// SignerName is the synthetic signer owning every signature decoded
// from a JSON dump.
const SignerName = "Signer"

// DefaultOrigin is used when an element carries no origin tag.
const DefaultOrigin = "Unknown"

// Decode parses a JSON-array signature file into a single parsed
// signer. Elements must carry dataPoints and the legacy
// creationTimeStamp field; the latter is only checked for presence,
// kept for backward file compatibility.
func Decode(data []byte) ([]model.ParsedSigner, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, errors.New("cannot parse the given file: object is not an array")
	}

	signer := model.ParsedSigner{Name: SignerName}

	for i, element := range elements {
		signature, err := decodeElement(i, element)
		if err != nil {
			return nil, err
		}
		signer.Signatures = append(signer.Signatures, signature)
	}

	return []model.ParsedSigner{signer}, nil
}

// rawToLabel renders a scalar JSON value as a plain label, unquoting
// strings and leaving numbers as their literal text.
func rawToLabel(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func decodeElement(index int, element json.RawMessage) (model.ParsedSignature, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(element, &fields); err != nil {
		return model.ParsedSignature{}, errors.Errorf("cannot parse element no. %d of the array: not an object", index)
	}

	creationTimeStamp, ok := fields["creationTimeStamp"]
	if !ok {
		return model.ParsedSignature{}, errors.Errorf("cannot parse element no. %d of the array: expected property: 'creationTimeStamp' not found", index)
	}

	rawPoints, ok := fields["dataPoints"]
	if !ok {
		return model.ParsedSignature{}, errors.Errorf("cannot parse element no. %d of the array: expected property: 'dataPoints' not found", index)
	}

	var dataPoints []model.DataPoint
	if err := json.Unmarshal(rawPoints, &dataPoints); err != nil {
		return model.ParsedSignature{}, errors.Errorf("cannot parse element no. %d of the array: dataPoints: %v", index, err)
	}
	if len(dataPoints) == 0 {
		return model.ParsedSignature{}, errors.Errorf("cannot parse element no. %d of the array: no points were loaded for signature", index)
	}

	signature := model.ParsedSignature{
		Name:         rawToLabel(creationTimeStamp),
		Authenticity: model.AuthenticityUnknown,
		Origin:       DefaultOrigin,
		DataPoints:   dataPoints,
	}

	if raw, ok := fields["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err == nil {
			signature.Name = name
		}
	}

	if raw, ok := fields["authenticity"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			// Invalid values fall back to unknown.
			if authenticity, valid := model.ParseAuthenticity(s); valid {
				signature.Authenticity = authenticity
			}
		}
	}

	if raw, ok := fields["origin"]; ok {
		var origin string
		if err := json.Unmarshal(raw, &origin); err == nil {
			signature.Origin = origin
		}
	}

	return signature, nil
}
