// Package widget covers the dashboard's side of the embeddable chat widget:
// the embed snippet customers paste into their sites, the preview URLs, and
// a typed channel for the messages the widget frame sends to its host page.
//
// Frame messages are relayed by the page script to POST /demo/events,
// decoded against the declared schema, and fanned out by Broadcaster to the
// event streams open for the same tab.
package widget
