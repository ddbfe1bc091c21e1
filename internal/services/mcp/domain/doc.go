// Package domain defines the agent-facing font catalog tools.
package domain
