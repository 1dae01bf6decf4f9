// Package guide serves the dashboard's quick setup guide and the help
// topics. Help documents are markdown files compiled into the binary.
package guide
