// Package store defines the read-side persistence interfaces for demand and
// rental posts. Posts are written by the CRUD collaborator; this service only
// reads them to feed the AI pipeline.
package store
