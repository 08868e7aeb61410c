// Package types provides small value types shared by the editor-facing
// domain packages.
//
// Core Types:
//   - Position: line/column location of a cursor
//   - Scroll: viewport offset of an editor surface
//   - Range: a selection between two positions
//
// These are plain values with JSON tags so they flow unchanged from the
// HTTP layer into tabs, history entries and persisted session blobs.
package types
