// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

// Package auth implements the user-facing authentication flows.
//
// # Flows
//
// Service coordinates the API client, the session manager, the notification
// sink and the router:
//   - CreateUser - signup, then the login view
//   - Login - token exchange, session start, then the home view
//   - RequestPasswordReset - asks the server to email a reset link
//   - OpenResetToken / ChangePassword - the new-password view
//   - Logout - ends the session, then the login view
//
// Every transport failure publishes an auth-failure event, shows the server's
// message through the sink and is returned to the caller.
//
// WatchExpiry subscribes the expiry handler that shows the session-expired
// notice and returns the user to the login view.
package auth
