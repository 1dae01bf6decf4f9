// Package onboarding implements the first-run wizard that configures a
// business's agent.
//
// The wizard is a small state machine. Each screen is a Step value and the
// allowed moves between them are listed in one transition table; moves not
// in the table fail with ErrInvalidTransition. The description guard runs
// again at submission, so a draft can never be finalized with a short
// description even if it was edited after leaving the first step.
//
// Knowledge-base links are collected but not sent: the onboarding endpoint
// accepts only the agent name, description and personality.
package onboarding
