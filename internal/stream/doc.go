// Package stream provides event fan-out for wifiboard.
//
// This package is internal to wifiboard and carries engine events from the
// monitoring loop to everything that watches it: SSE handlers, SDK
// callbacks, and tests. It implements a publish-subscribe hub where each
// subscriber owns a buffered channel.
//
// The main components are:
//
//   - [Hub]: Registry of subscribers with non-blocking broadcast
//   - [Event]: One named, JSON-marshalable engine event
//
// Delivery is fire-and-forget and at-most-once: sends never block the
// publisher, and a subscriber whose buffer is full loses events rather than
// slowing the engine down. There is no replay for late subscribers.
//
// Users of the wifiboard library should not need to interact with this
// package directly.
package stream
