// Package internal contains shared types and utilities for qbzrun.
//
// It provides configuration loading, session naming, cleanup orchestration,
// and the output abstraction used by the bzr, docker and launch packages.
package internal
