// Package fileutil holds the small filesystem helpers the pipeline relies on:
// existence checks, atomic writes, cross-device moves, and per-target locks.
package fileutil
