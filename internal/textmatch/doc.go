// Package textmatch scores how well a cached or remote series title matches a
// free-text query.
//
// Score is a pure function with ordered tiers (exact, normalized exact,
// containment, reverse containment, raw containment) so that sorting by the
// score alone always ranks exact matches above normalized ones and normalized
// matches above partial ones. Normalize strips release years and regional
// qualifiers such as "(UK)" and folds diacritics before comparison.
package textmatch
