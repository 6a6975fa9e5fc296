package pipeline

import (
	stderrors "errors"
	"io"
	"os"

	"github.com/matzehuels/archlayout/pkg/diagram"
	"github.com/matzehuels/archlayout/pkg/errors"
)

// Load reads and validates the document at path. Errors carry a code the CLI
// and server can map: FILE_NOT_FOUND, INVALID_FORMAT or INVALID_DOCUMENT.
func Load(path string) (*diagram.Document, error) {
	doc, err := diagram.Load(path)
	if err != nil {
		return nil, classify(err, path)
	}
	if err := diagram.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Decode reads and validates a document from r.
func Decode(r io.Reader, format diagram.Format) (*diagram.Document, error) {
	doc, err := diagram.Read(r, format)
	if err != nil {
		return nil, classify(err, "request body")
	}
	if err := diagram.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func classify(err error, source string) error {
	switch {
	case stderrors.Is(err, os.ErrNotExist):
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "%s not found", source)
	case stderrors.Is(err, diagram.ErrUnknownFormat):
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "unsupported document format")
	}
	return errors.Wrap(errors.ErrCodeInvalidDocument, err, "cannot read %s", source)
}
