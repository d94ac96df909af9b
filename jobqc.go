// Package jobqc audits job advertisement feeds for content-quality defects.
// It fetches an XML feed of job adverts, sanitizes their HTML descriptions,
// guesses each advert's language and runs a configurable set of quality
// rules, producing an ordered report with one entry per advert.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, goquery/, whatlanggo/).
package jobqc
