// Package handler implements the HTTP front door for the load
// balancer. It dispatches an inbound path to its target group,
// coordinates target selection and forwarding, and writes proxy
// error responses.
package handler
