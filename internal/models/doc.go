// Package models defines domain entities and persistence interfaces for the cratedig classification service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing catalog and classification data
//   - [Track] : Song metadata enriched with artist genres and audio features
//   - [ClassifiedTrack] : A track copy carrying its assigned [Category]
//   - [Summary] : Per-category tallies and overall success rate for a run
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Run] : A classification run with provider, batch size, and outcome totals
//
// Persistent entities implement the Model interface providing ID generation, timestamps, and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
