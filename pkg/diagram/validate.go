package diagram

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/archlayout/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a document before layout. All problems are reported as
// INVALID_DOCUMENT errors naming the offending node or edge.
func Validate(doc *Document) error {
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidDocument, "document is empty")
	}
	if err := validate.Struct(doc); err != nil {
		return formatValidationError(err)
	}

	seen := make(map[string]int, len(doc.Elements))
	for i, e := range doc.Elements {
		if err := errors.ValidateElementID(e.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "nodes[%d]", i)
		}
		if j, dup := seen[e.ID]; dup {
			return errors.New(errors.ErrCodeInvalidDocument, "nodes[%d]: duplicate id %q (first at nodes[%d])", i, e.ID, j)
		}
		seen[e.ID] = i
	}
	for i, r := range doc.Relationships {
		if r.ID == "" {
			continue
		}
		if err := errors.ValidateElementID(r.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "edges[%d]", i)
		}
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "invalid document")
	}

	e := verrs[0]
	var msg string
	switch e.Tag() {
	case "required":
		msg = "field is required"
	case "gte":
		msg = fmt.Sprintf("must be at least %s", e.Param())
	default:
		msg = fmt.Sprintf("validation failed (%s)", e.Tag())
	}
	return errors.New(errors.ErrCodeInvalidDocument, "%s: %s", fieldPath(e.Namespace()), msg)
}

// fieldPath turns validator namespaces such as "Document.Elements[2].ID"
// into the document's own key names, "nodes[2].id".
func fieldPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Document.")
	r := strings.NewReplacer(
		"Elements", "nodes",
		"Relationships", "edges",
		".ID", ".id",
		".Source", ".source",
		".Target", ".target",
		".Width", ".width",
		".Height", ".height",
	)
	return r.Replace(ns)
}
