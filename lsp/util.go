package lsp

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// URIToPath converts a document URI to a file system path.
func URIToPath(documentURI protocol.DocumentURI) string {
	return uri.New(string(documentURI)).Filename()
}

// PathToURI converts a file system path to a document URI.
func PathToURI(path string) protocol.DocumentURI {
	return protocol.DocumentURI(uri.File(path))
}
