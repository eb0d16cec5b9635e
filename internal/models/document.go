package models

import "fmt"

// DocumentType identifies one of the generated documents
type DocumentType string

const (
	DocumentOverview        DocumentType = "overview"
	DocumentPRD             DocumentType = "prd"
	DocumentTechStack       DocumentType = "techStack"
	DocumentCodeRules       DocumentType = "codeRules"
	DocumentDevelopmentPlan DocumentType = "developmentPlan"
)

// DocumentOrder is the fixed generation order. Each document may only depend on
// documents that come before it.
var DocumentOrder = []DocumentType{
	DocumentOverview,
	DocumentPRD,
	DocumentTechStack,
	DocumentCodeRules,
	DocumentDevelopmentPlan,
}

// Valid reports whether t is one of the known document types
func (t DocumentType) Valid() bool {
	return t.Index() >= 0
}

// Index returns the position of t in DocumentOrder, or -1
func (t DocumentType) Index() int {
	for i, known := range DocumentOrder {
		if known == t {
			return i
		}
	}
	return -1
}

// Previous returns the document generated right before t
func (t DocumentType) Previous() (DocumentType, bool) {
	i := t.Index()
	if i <= 0 {
		return "", false
	}
	return DocumentOrder[i-1], true
}

// ParseDocumentType converts a raw path or payload value into a DocumentType
func ParseDocumentType(raw string) (DocumentType, error) {
	t := DocumentType(raw)
	if !t.Valid() {
		return "", fmt.Errorf("unknown document type: %s", raw)
	}
	return t, nil
}

// DocumentStatus is the lifecycle status of a generated document
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusGenerating DocumentStatus = "generating"
	StatusComplete   DocumentStatus = "complete"
	StatusError      DocumentStatus = "error"
)

// GeneratedDocument holds the status and content of one document.
// Content is non-empty only when Status is complete, Error only when Status is error.
type GeneratedDocument struct {
	Type    DocumentType   `json:"type"`
	Status  DocumentStatus `json:"status"`
	Content string         `json:"content"`
	Error   string         `json:"error,omitempty"`
}

// Consistent reports whether the document satisfies the content/error invariant
func (d GeneratedDocument) Consistent() bool {
	switch d.Status {
	case StatusComplete:
		return d.Content != "" && d.Error == ""
	case StatusError:
		return d.Content == "" && d.Error != ""
	case StatusPending, StatusGenerating:
		return d.Content == "" && d.Error == ""
	default:
		return false
	}
}

// Documents maps every DocumentType to its document. It always holds exactly
// one entry per type.
type Documents map[DocumentType]GeneratedDocument

// NewDocuments returns the default set with every document pending
func NewDocuments() Documents {
	docs := make(Documents, len(DocumentOrder))
	for _, t := range DocumentOrder {
		docs[t] = GeneratedDocument{Type: t, Status: StatusPending}
	}
	return docs
}

// Clone returns an independent copy
func (d Documents) Clone() Documents {
	out := make(Documents, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Content returns the content of t, empty unless t is complete
func (d Documents) Content(t DocumentType) string {
	doc, ok := d[t]
	if !ok || doc.Status != StatusComplete {
		return ""
	}
	return doc.Content
}
