// Package reconcile resolves a one-to-one correspondence between two sets of
// canonical title keys: the ordered catalog side (LMS module items) and the
// entity side (media or assignment summaries). Matching runs in three passes:
// exact key equality, token-set fuzzy scoring above a threshold, then a
// lowered-threshold fallback when the fuzzy pass produced nothing. Selection
// is greedy highest-score-first and never assigns a catalog or entity index
// twice. A catalog key with no acceptable counterpart simply stays unmatched;
// that is a normal outcome, not an error.
package reconcile
