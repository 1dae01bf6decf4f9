// Package server wires the nova-dashboard components together and owns the
// HTTP listener, either plain TCP or a tailnet node via tsnet.
package server
