// Package tier defines the result type every extraction tier returns and the
// error markers used to classify why a tier did not produce captions.
//
// Tiers never use errors for expected fallback flow: a tier that cannot
// produce captions returns an Outcome with OK false and a Reason. Errors
// returned alongside are kept for logging only.
package tier
