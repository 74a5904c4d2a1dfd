package core

// FileStore is any collaborator that can persist a derived file and hand
// back a public URL for it.
type FileStore interface {
	// Save writes data under the given relative path and returns the public URL.
	Save(relPath string, data []byte, contentType string) (string, error)
}
