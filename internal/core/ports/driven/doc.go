// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): durable storage, embedding providers
// and the generation collaborator.
package driven
