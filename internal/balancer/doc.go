// Package balancer implements the target-selection and forwarding
// engine. It dispatches to a selection algorithm per request, keeps a
// reusable session per backend endpoint, and maps transport failures to
// proxy error responses (504 on timeout, 502 otherwise).
package balancer
