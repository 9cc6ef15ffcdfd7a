// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package logging

// SanitizeSessionID masks a session ID.
// Example: "3f2c9a10-...-77aa01bc" -> "3f2c...01bc"
func SanitizeSessionID(sessionID string) string {
	return mask(sessionID, 12)
}

// SanitizeClientKey masks a session cookie value.
func SanitizeClientKey(key string) string {
	return mask(key, 12)
}

// SanitizeUserID masks a user ID for privacy.
// Example: "user-12345678" -> "user...5678"
func SanitizeUserID(userID string) string {
	return mask(userID, 8)
}

// mask keeps the first and last four characters of values longer than
// minLen and hides shorter ones entirely.
func mask(value string, minLen int) string {
	if value == "" {
		return ""
	}
	if len(value) <= minLen {
		return "***"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
