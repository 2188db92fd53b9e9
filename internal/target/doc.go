// Package target models backend endpoints and named target groups.
// A group is built once from a comma-delimited specification string,
// resolving hostnames to IPv4 addresses and keeping per-hostname weights
// for weighted selection groundwork.
package target
