// Package cache keeps recently opened images in memory so that repeated
// opens from remote stores skip the download.
//
// LRU evicts by total byte size and can charge cached bytes against a
// resource.Controller memory limit.
package cache
