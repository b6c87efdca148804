// Package raggen turns retrieval results into cited answers. It fits ranked
// candidate documents into an LLM context budget, invokes the provider with
// retry and safety-block handling, and accounts token usage per invocation.
package raggen
