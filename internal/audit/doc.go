// Package audit provides audit trail logging for capsule operations.
//
// Every significant operation (key generation, key import, encrypt, decrypt,
// directory fetch) is recorded in a user-level audit log, so the history of
// what touched the registry and what was encrypted for whom stays
// reconstructable.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line) in the
// user data directory as audit.jsonl. Each entry carries a timestamp
// (RFC3339 with microseconds, UTC), a generated entry UUID, the local
// username, the operation name, and operation-specific details.
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the operation continues without error. Operations should never
// fail just because audit logging failed.
//
// # Reading Logs
//
// Use ReadEntries() to parse the audit log for display or analysis.
// Malformed entries are silently skipped to handle partial writes.
package audit
