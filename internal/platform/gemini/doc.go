// Package gemini provides an implementation of the generation.Generator interface
// backed by Google's Gemini API.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's AI pipeline to Google's external Gemini service
// without exposing the details of the SDK to the rest of the application.
//
// Key components:
//
// 1. GeminiGenerator:
//   - Implements the generation.Generator interface
//   - Selects the model tier per request (fast or deep-dive)
//   - Forces JSON output for structured tasks
//   - Attaches Google Search and Google Maps grounding, including the
//     caller's position, for location-aware tasks
//
// 2. Response Processing:
//   - Concatenates the answer text, skipping thought parts
//   - Collects grounding citations, de-duplicated by URI
//   - Detects safety blocks and empty candidates
//
// 3. Error Handling:
//   - Bounds every attempt with a timeout
//   - Retries transient failures (rate limits, 5xx, timeouts) with
//     exponential backoff and jitter
//   - Translates SDK errors into the generation package's error taxonomy
//
// Prompt construction and response validation live in the generation package;
// this package only moves text to and from the upstream service.
package gemini
