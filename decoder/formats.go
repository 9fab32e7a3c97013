package decoder

import (
	"path"
	"strings"

	"github.com/pkg/errors"

	"siginspect/encoding/sigjson"
	"siginspect/encoding/svc2004"
	"siginspect/encoding/svc2021"
	"siginspect/model"
)

// NewJSON returns a decoder for the JSON-array dump format. The signer
// id filter is not meaningful for this format and is ignored.
func NewJSON() Decoder {
	return &workerDecoder{
		name: "sigjson",
		decode: func(_ parseRequest, data []byte) ([]model.ParsedSigner, error) {
			return sigjson.Decode(data)
		},
	}
}

// NewSvc2004 returns a decoder for single SVC-2004 fixed-column files.
func NewSvc2004() Decoder {
	return &workerDecoder{
		name: "svc2004",
		decode: func(req parseRequest, data []byte) ([]model.ParsedSigner, error) {
			signer, err := svc2004.Decode(req.FileName, data)
			if err != nil {
				return nil, err
			}
			return []model.ParsedSigner{signer}, nil
		},
	}
}

// NewSvc2021 returns a decoder for DeepSignDB zip archives. batchSize
// bounds how many signer groups decode concurrently inside the worker.
func NewSvc2021(batchSize int64) Decoder {
	return &workerDecoder{
		name: "svc2021",
		decode: func(req parseRequest, data []byte) ([]model.ParsedSigner, error) {
			return svc2021.DecodeArchive(data, req.SignerIDs, batchSize)
		},
	}
}

// ForFile picks a decoder from the file extension: .json for the dump
// format, .zip for DeepSignDB archives, .txt for SVC-2004 files.
func ForFile(fileName string, batchSize int64) (Decoder, error) {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".json":
		return NewJSON(), nil
	case ".zip":
		return NewSvc2021(batchSize), nil
	case ".txt":
		return NewSvc2004(), nil
	}
	return nil, errors.Errorf("no decoder for file: %s", fileName)
}
