// Package gallery contains small example screens built on the store.
//
// Each experiment is a headless rendition of a UI screen: views are plain
// types that read from a cache or store and expose the operations a user
// would trigger. Run plays a scripted session against fresh stores and
// returns a Report of the state after each step.
//
// Experiments that need data from the network (favorite posts, image
// gallery) fetch it through collaborators outside the store and feed the
// result back with Set.
package gallery
