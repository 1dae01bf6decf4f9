// Package billing lists the plans offered on the pricing page and starts
// hosted checkouts through the backend.
package billing
