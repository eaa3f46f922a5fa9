// Package stream fans finished delivery plans out to websocket subscribers.
//
// The Hub never blocks a publisher: each subscriber owns a bounded channel
// and messages for a full channel are dropped and counted. Handler serves
// the feed over gorilla/websocket and Watch consumes it.
package stream
