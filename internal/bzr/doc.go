// Package bzr locates Bazaar working trees on the host filesystem.
//
// It resolves user supplied paths, walks upward to the directory holding the
// .bzr marker, detects trees nested in a shared repository, and queries the
// local bzr client for the committer identity.
package bzr
