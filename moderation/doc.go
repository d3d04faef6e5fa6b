// Pre-publication content moderation pipeline for short-form social text.
//
// This package (`github.com/arbiter-social/arbiter/moderation`) screens
// user-submitted text before it publishes, assigns a multi-category risk
// profile, and routes each submission to one of three outcomes: immediate
// allow, immediate block, or hold in a review queue for human moderators.
// Scoring is deterministic pattern/heuristic based; there is no trained
// classifier. Every automated or human decision is recorded in an
// append-only audit log.
//
// See `cmd/sift` for a daemon built on this package.
package moderation
