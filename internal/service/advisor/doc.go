// Package advisor orchestrates the AI pipeline behind the location features:
// forward and reverse geocoding, business-idea reports for a location, and
// demand/rental matchmaking.
//
// Every operation follows the same path: build a prompt from typed inputs,
// make exactly one logical upstream generation, validate the answer, and
// post-process it locally (ranking and resolving matches against the posts
// that were sent). Calls are tracked per user and action so that a newer
// request cancels an older one and a late result is reported as ErrSuperseded
// rather than delivered.
package advisor
