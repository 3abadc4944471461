// Package localnotify implements the demo's two user actions, requesting
// notification permission and scheduling a test notification, plus the
// process-wide delegate that decides how foreground deliveries are shown.
//
// Both actions are a single asynchronous call to the host whose outcome is
// only logged. They share no state and neither retries or times out.
package localnotify
