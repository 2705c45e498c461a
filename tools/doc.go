// Package tools defines the Tool interface for LLM agents: registration,
// parameter schema, and invocation. Tools enable agents to interact with
// external systems and APIs in a structured, extensible way.
package tools
