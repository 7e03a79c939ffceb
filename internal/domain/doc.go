// Package domain contains the core marketplace entities: community demand posts,
// commercial rental posts, their locations, and the ephemeral results produced by
// the AI advisor (matches between the two, and local business-idea reports).
// It is independent of any specific infrastructure or delivery mechanism.
package domain
