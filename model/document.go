package model

// Document is a flexible map representing one engine result document.
// Engines return whatever fields the query projected, so the shape depends
// on the request. Example: doc["id"], doc["title"]
type Document map[string]interface{}

// GetDocumentID returns the engine unique key if it's stored under "id".
func (d Document) GetDocumentID() (string, bool) {
	if id, ok := d["id"]; ok {
		if str, sok := id.(string); sok {
			if str != "" {
				return str, true
			}
		}
	}
	return "", false
}

// Projection returns the partial/script field sub-object when the engine
// wrapped the document in a "fields" object.
func (d Document) Projection() (Document, bool) {
	raw, ok := d["fields"]
	if !ok {
		return nil, false
	}
	switch fields := raw.(type) {
	case map[string]interface{}:
		return Document(fields), true
	case Document:
		return fields, true
	}
	return nil, false
}
