// package tasks implements the crate-building pipeline for a music library.
//
// The core abstraction is CrateEngine, which orchestrates fetching a library,
// enriching tracks, classifying them into crates, and persisting/exporting the
// results. Operations emit progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks
