// Package workspace provisions one isolated directory per client.
//
// A client identifier is opaque. It is never used as a path component directly:
// the directory name is a hex prefix of SHA-256(identifier), which keeps path
// traversal sequences and filesystem-unsafe characters out of the tree and
// bounds the name length regardless of the identifier's size.
//
//	clients/
//	└── c18a9b5a35e73b07/   <- sha256("client_001")[:16]
//	    └── index.html
//
// Resolution is idempotent and safe for concurrent callers. Workspaces are
// created lazily and never removed by this package.
package workspace
