// Package manager is the façade over the single inference slot. It wires the
// residency guard, the load scheduler and the generation pipeline together and
// is the only entry point the CLI and HTTP layers use. It is structured into
// small files by concern:
//
//   - manager.go: Manager type, constructor, load/generate/unload entry points.
//   - config.go: Config and the defaults NewWithConfig applies.
//   - errors.go: error classification helpers (IsNotFound, IsUnavailable, ...).
//   - status_report.go: Status and ListModels reporting.
//   - sanity.go: SanityCheck preflight for engine build and models dir.
//
// Build tags:
//
//   - In-process llama: the go-llama.cpp engine is compiled with `-tags=llama`.
//     Without the tag the llama engine refuses to load and the scripted engine
//     can be selected for dry runs.
package manager
