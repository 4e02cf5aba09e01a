// Package meetingid normalizes opaque meeting identifiers into path-safe keys.
//
// Zoom meeting UUIDs are base64 and may contain '+', '/' and '=', which break
// URL path segments (some proxies decode %2F before the application sees it).
// Every producer and consumer must run identifiers through Encode, so that a
// webhook-delivered UUID and a client-reported UUID for the same meeting land
// on the same store partition.
package meetingid

import "strings"

var replacer = strings.NewReplacer("+", "-", "/", "_", "=", "")

// Encode converts a raw meeting identifier into its canonical path-safe key.
// Deterministic, total and idempotent on already-safe inputs; not reversible.
func Encode(raw string) string {
	return replacer.Replace(raw)
}
