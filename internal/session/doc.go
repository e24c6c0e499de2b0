// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

// Package session owns the client-side authentication session.
//
// A Manager holds the bearer token, user id and authenticated flag for one
// running application, persists them to a kvstore.Store so a later run can
// restore them, and schedules a single expiry timer that clears the session
// when the token lapses. Every transition is published synchronously to
// subscribed listeners in registration order.
package session
