// Package sources enumerates, in a fixed order, the places a credential may
// be found. Streams are lazy: a later (more expensive) source such as a
// directory scan is only visited if the consumer keeps iterating.
package sources
