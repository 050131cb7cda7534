// package repositories provides persistence layer implementations for run history.
//
// RunRepository implements models.Repository[*models.Run], handling CRUD
// operations, soft deletes, sequence generation, and the per-track
// classification rows attached to each run.
package repositories
