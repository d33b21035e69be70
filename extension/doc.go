// Package extension keeps the registry of side-effect services the dispatcher
// may invoke. Services are registered by name and expose typed methods.
package extension
