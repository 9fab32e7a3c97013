// Package decoder exposes the three signature file formats behind one
// contract: hand a decoder a file and the existing signer roster, get
// back a merge result. Decode work runs inside a task worker owned by
// the decoder, so a malformed file can never take the caller down with
// it.
package decoder

import (
	"encoding/json"

	"siginspect/log"
	"siginspect/model"
	"siginspect/task"
)

// File is a raw input file: a name (identity is filename-derived for
// some formats) and its full contents.
type File struct {
	Name string
	Data []byte
}

// Decoder turns raw file bytes into a merge result against the
// caller's roster. The roster is read-only from the decoder's
// perspective; new and augmented signers come back in the ParseResult
// for the caller to fold in. Dispose releases the decoder's worker.
type Decoder interface {
	Parse(file File, existingSigners []*model.Signer, signerIDs []string) (*model.ParseResult, error)
	Dispose()
}

// parseRequest is the worker-bound body of a parse call. The file
// contents travel as a moved buffer, not inside the JSON body.
type parseRequest struct {
	FileName  string   `json:"fileName"`
	SignerIDs []string `json:"signerIds,omitempty"`
}

// decodeFunc is one format's pure decode logic, run inside the worker.
type decodeFunc func(req parseRequest, data []byte) ([]model.ParsedSigner, error)

// workerDecoder is the shared worker plumbing behind every format. The
// worker is created lazily on first parse and torn down by Dispose.
type workerDecoder struct {
	name   string
	decode decodeFunc
	worker *task.Worker
}

func (d *workerDecoder) taskWorker() *task.Worker {
	if d.worker == nil {
		decode := d.decode
		d.worker = task.NewWorker(d.name, func(method string, body json.RawMessage, buffers [][]byte) (json.RawMessage, error) {
			var req parseRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return nil, err
			}

			var data []byte
			if len(buffers) > 0 {
				data = buffers[0]
			}

			parsed, err := decode(req, data)
			if err != nil {
				return nil, err
			}
			return json.Marshal(parsed)
		})
	}
	return d.worker
}

func (d *workerDecoder) Parse(file File, existingSigners []*model.Signer, signerIDs []string) (*model.ParseResult, error) {
	body, err := json.Marshal(parseRequest{FileName: file.Name, SignerIDs: signerIDs})
	if err != nil {
		return nil, err
	}

	future := d.taskWorker().Submit(task.Request{
		Method:  "parse",
		Body:    body,
		Buffers: [][]byte{file.Data},
	})

	message, err := future.Await()
	if err != nil {
		return nil, err
	}

	var parsed []model.ParsedSigner
	if err := json.Unmarshal(message, &parsed); err != nil {
		return nil, err
	}

	result := model.MergeParsed(existingSigners, parsed)
	log.Trace.Printf("%s: parsed %s: %d new signers, %d augmented",
		d.name, file.Name, len(result.NewSigners), len(result.SignersWithNewSignatures))
	return result, nil
}

func (d *workerDecoder) Dispose() {
	if d.worker != nil {
		d.worker.Close()
	}
}
