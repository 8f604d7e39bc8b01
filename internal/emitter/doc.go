// Package emitter renders resolved IR into Go source artifacts.
//
// Rendering is a pure function from IR to text: Render composes every file
// in memory and touches no filesystem state, so emission logic is testable
// against byte buffers. Write is the single, separate step that puts files
// on disk — and only files whose content actually changed.
//
// Determinism rules:
//   - every emitted member (struct field, interface method, subscription)
//     is ordered lexicographically by name, never by spec declaration or
//     map iteration order;
//   - byte-identical output for unchanged input, run over run;
//   - every file starts with the machine-generated header.
package emitter
