/*
Package carcheacks reconstructs complete per-vehicle trajectory records
from the sparse, noisy per-frame output of an external detector, tracker
and OCR stage, and links license plate detections to the tracked vehicle
containing them.

The tracker package holds the record store, containment association and
gap reconstruction, the plate package the grammar-directed text
canonicalizer, the pipeline package the per-frame driver with injected
models and the record package the CSV, JSONL and SQLite serializations.
This root package carries the access control layer built on top of
canonical plate numbers.

See example code and usage in the example subdirectory.
*/
package carcheacks
