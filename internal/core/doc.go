// Package core runs the portfolio report pipeline and decides what happens
// to its outcome.
//
// This package is independent of the chat platform and the HTTP surface. It
// talks to the sheet through [Source] and to the chat channel through
// [Destination], so the bot, the ops server and the tests all drive the same
// code.
//
// # Pipeline
//
// [Service.Run] performs one pass:
//
//  1. Fetch the published CSV through the Source
//  2. Parse rows into records and sum their values
//  3. Render pages of at most 25 fields
//  4. Deliver pages in order with [Deliver], stopping at the first failure
//
// The outcome is a [Result] whose [Status] names the stage that failed.
// Nothing is shared between passes; each one builds its own [Report].
//
// # Triggers
//
// Two callers use the pipeline and treat failures differently:
//
//   - [Scheduler] runs a cycle every interval. Failures, panics included,
//     are logged and the next tick runs as usual. Nothing is posted to chat.
//   - [CommandHandler] answers the report command. Failures and empty sheets
//     are answered with a short notice in the requesting channel.
//
// # Error Handling
//
// Technical errors are mapped to user-facing notices with [MapError]. Each
// category has a code so a notice in chat can be matched to a log line:
//
//   - SRC001-SRC006: Sheet download errors (status, timeout, size)
//   - CSV001: Malformed CSV
//   - DLV001-DLV002: Channel resolution and posting errors
//   - REQ001-REQ002: Cancellation and deadlines
package core
