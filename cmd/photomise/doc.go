// Command photomise groups photos into events by time and place, keeps
// per-photo processing parameters, and posts curated events to Bluesky.
package main
