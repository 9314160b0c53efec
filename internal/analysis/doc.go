// Package analysis builds AI resolution-suggestion requests from normalized
// clashes and sends them to a language model. Only a trimmed projection of
// the first few clashes is sent, keeping requests small.
package analysis
