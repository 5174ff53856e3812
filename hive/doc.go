// Package hive implements a read-only view of Windows Registry hive files
// sufficient to drive the XML serializer: base block parsing, cell
// resolution, zero-copy NK/VK record views, subkey and value list
// traversal, typed value decoding, and a visitor-driven walk (Visit).
//
// All record accessors point into the memory-mapped hive buffer; nothing is
// copied unless decoding requires it. Handles (types.NodeID, types.ValueID)
// are absolute file offsets of cell payloads, which doubles as the
// provenance address the serializer reports in byte runs.
package hive
