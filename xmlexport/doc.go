// Package xmlexport serializes a registry hive into a forensically-annotated
// XML document on a stream.
//
// The document mirrors the hive tree: one <node> element per key (values
// first, then subkeys), one <value> element per value, shaped by the value's
// type tag and whether its text payload decoded cleanly. Every node and value
// carries <byte_runs> provenance pointing back into the hive file, and any
// attribute that would contain non-printable bytes degrades to base64 with a
// companion *_encoding="base64" marker.
//
// Output is streamed; nothing is buffered beyond the XML writer's own
// buffering, so a mid-stream failure leaves a truncated document behind.
package xmlexport
