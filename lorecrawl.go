// Package lorecrawl provides a polite, resumable crawler for wiki sites.
// It discovers pages by following links, honors per-domain rate limits and
// robots directives, and snapshots scheduler state so an interrupted crawl
// can continue exactly where it left off.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, http/).
package lorecrawl
