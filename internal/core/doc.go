// Package core provides the business logic for CSV data-quality audits.
//
// This package contains all domain logic independent of any UI or
// transport layer. It is used by the web handlers and the CLI without
// modification.
//
// # Pipeline
//
// A run moves through three stages:
//
//  1. internal/csv lexes and parses the text into a tagged [csv.Tree]
//  2. [BuildRecords] walks the tree into a [Header] and ordered [Record] values
//  3. [Analyze] runs the four analyzers over the records
//
// The analyzers are pure functions:
//
//   - [DetectDuplicates]: value tuples that occur more than once
//   - [CountCategories]: occurrences per category value
//   - [DetectInvalidAmounts]: records whose amount is missing or a n/a sentinel
//   - [SumByCategory]: amount totals per category
//
// [DetectInvalidAmounts] only flags missing values. Garbage such as "abc"
// is neither flagged nor summed.
//
// # Ordering
//
// Records, counts and totals use [OrderedMap], so iteration and JSON
// output follow first-seen order.
//
// # Totals
//
// A category's [Total] stays an exact integer until its first decimal
// contribution, after which it is a float64.
//
// # Service
//
// [Service] wraps the pipeline with a concurrency [Limiter], structured
// logging, and optional run history through a [RunStore].
//
// # Error Handling
//
// Parse failures surface as *csv.ParseError with line and column.
// Technical errors are mapped to user-friendly messages using [MapError]:
//
//   - CSV001-CSV004: syntax errors
//   - FILE001-FILE005: file errors (size, read, missing, empty)
//   - EXP001-EXP002: export errors
//   - ANL001-ANL003: analysis errors (busy, unknown run, cancelled)
//   - DB004-DB007: history database errors
//   - RATE001: request rate limit
package core
