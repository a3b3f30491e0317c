// Package generation defines the boundary between the application and the
// language models that author vocabulary card content. The Generator
// interface takes a word and the learner's context and returns a meaning
// plus example phrases; internal/platform/gemini implements it against the
// Gemini API, and None answers for users who have not configured a model.
package generation
