// Package classifier decides whether a followed account is worth
// keeping, from evidence a page inspector observed on its profile.
//
// Rules are fixed priority, first match wins:
//  1. Ban notice on the page -> Invalid("Banned account")
//  2. Not-found notice -> Invalid("Account not found")
//  3. Probe failed -> Valid (ambiguity never causes an unfollow)
//  4. Profile resolves but shows no posts -> Invalid("No videos found")
//  5. Otherwise -> Valid
//
// Decide is pure and deterministic; Classify adds the probe call and
// logging around it. Callers must not invoke the classifier for
// handles already processed in earlier runs.
package classifier
