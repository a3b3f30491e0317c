// Package gemini implements generation.Generator with Google's Gemini API
// through the google.golang.org/genai client.
//
// The generator renders a prompt from an embedded template, asks the model
// for a JSON document matching a fixed response schema, and retries
// transient failures with exponential backoff and jitter. Safety blocks
// and malformed responses are permanent and returned immediately.
package gemini
