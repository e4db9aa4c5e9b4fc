// Package notifier renders matched strikes and delivers them to the
// configured chat.
//
// A strike is recorded in history only after the transport accepted it, so a
// failed send stays eligible for the next run. A history write failure after a
// successful send is logged and otherwise ignored: the next run may repeat the
// message, but the send itself is never lost.
//
// In dry-run mode nothing is sent but the record is still appended, so a
// strike matched by several conditions is previewed once, as in a real run.
package notifier
