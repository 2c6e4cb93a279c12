package janus

import "encoding/json"

// Part type discriminator values used in the internal representation.
// Wire formats may use a different discriminator key (A2A uses "kind");
// that renaming happens at the protocol boundary, never here.
const (
	PartTypeText     = "text"
	PartTypeFile     = "file"
	PartTypeData     = "data"
	PartTypeArtifact = "artifact"
)

// Part represents one typed fragment of message content. The set of
// variants is closed: text, file, data, and artifact.
type Part interface {
	partMarker()
	PartType() string
}

// TextPart carries plain text.
type TextPart struct {
	Type     string         `json:"type"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (TextPart) partMarker()        {}
func (p TextPart) PartType() string { return p.Type }

// NewTextPart creates a new TextPart with the given text.
func NewTextPart(text string) TextPart {
	return TextPart{Type: PartTypeText, Text: text}
}

// FilePart references file content, either by URL or as inline base64.
type FilePart struct {
	Type     string         `json:"type"`
	Name     string         `json:"name,omitempty"`
	MimeType string         `json:"mimeType,omitempty"`
	URL      string         `json:"url,omitempty"`
	Base64   string         `json:"base64,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (FilePart) partMarker()        {}
func (p FilePart) PartType() string { return p.Type }

// NewFilePartWithURL creates a FilePart referencing content by URL.
func NewFilePartWithURL(name, mimeType, url string) FilePart {
	return FilePart{Type: PartTypeFile, Name: name, MimeType: mimeType, URL: url}
}

// NewFilePartWithBase64 creates a FilePart with inline base64-encoded content.
func NewFilePartWithBase64(name, mimeType, base64Data string) FilePart {
	return FilePart{Type: PartTypeFile, Name: name, MimeType: mimeType, Base64: base64Data}
}

// DataPart carries arbitrary structured data.
type DataPart struct {
	Type     string         `json:"type"`
	Data     map[string]any `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (DataPart) partMarker()        {}
func (p DataPart) PartType() string { return p.Type }

// NewDataPart creates a new DataPart with the given data.
func NewDataPart(data map[string]any) DataPart {
	return DataPart{Type: PartTypeData, Data: data}
}

// ArtifactPart references an artifact produced during task execution.
type ArtifactPart struct {
	Type        string         `json:"type"`
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name,omitempty"`
	MimeType    string         `json:"mimeType,omitempty"`
	Content     string         `json:"content,omitempty"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (ArtifactPart) partMarker()        {}
func (p ArtifactPart) PartType() string { return p.Type }

// NewArtifactPart creates a new ArtifactPart.
func NewArtifactPart(id, name, mimeType, content string) ArtifactPart {
	return ArtifactPart{Type: PartTypeArtifact, ID: id, Name: name, MimeType: mimeType, Content: content}
}

// UnmarshalPart unmarshals a Part from JSON, dispatching on the "type"
// discriminator. Unknown types decode as DataPart so third-party producers
// with extension parts do not break parsing.
func UnmarshalPart(data []byte) (Part, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case PartTypeText:
		var p TextPart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case PartTypeFile:
		var p FilePart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case PartTypeArtifact:
		var p ArtifactPart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		var p DataPart
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	}
}
