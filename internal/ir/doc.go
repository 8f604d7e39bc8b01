// Package ir provides the intermediate representation for speckit.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps IR
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - The IR is an immutable value: the loader builds it once per
//     invocation and threads it explicitly through resolver and emitter.
//     Nothing downstream mutates it.
//   - Ordered collections are slices, never maps, so declaration order
//     survives for reporting while emission sorts lexicographically.
//   - All JSON tags use snake_case.
package ir
