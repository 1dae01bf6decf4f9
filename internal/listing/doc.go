// ABOUTME: Package listing derives the leads, conversations and metrics views
// ABOUTME: Pure functions over lists already fetched from the backend

// Package listing holds the client-side derivations behind the data pages.
// Filtering and sorting always return new slices; the fetched list is left
// untouched so the page can re-derive it for different controls.
package listing
