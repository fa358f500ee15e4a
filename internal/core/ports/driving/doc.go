// Package driving provides the service interfaces exposed to callers
// (primary/inbound ports). The engine has no CLI; embedding hosts
// consume it through these interfaces.
package driving
