// Package tripbased holds the immutable data model shared by the trip-based
// (TB) transit routing core: feeds, stops, trips, stop times, patterns,
// stopping events, and transfers. Schedule indexing, transfer precomputation,
// and round-based search live in the schedule, transfer, and router
// subpackages; this package only defines the vocabulary they share.
package tripbased
