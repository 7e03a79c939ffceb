// Package generation is the boundary between the application and external
// LLM services. It defines the Generator interface (one upstream call per
// invocation), the error taxonomy shared by every implementation, the prompt
// builders that turn domain entities into task prompts, and the validators that
// turn raw model output back into typed values.
package generation
