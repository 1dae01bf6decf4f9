// Package dashboard implements the signed-in shell: the onboarding gate that
// runs once per session, the sidebar, and the overview page's data.
//
// The gate treats any failure to read the business profile as "onboarding
// required" and never revalidates; a session keeps its decision until it ends
// or the wizard completes.
package dashboard
