// Package translate converts shop orders into refbox order descriptors.
//
// Translation is a pure function of the input: one refbox.Order per item,
// in item order. Option names select the field by prefix (base_, cap_,
// ring_<n>) and values select the color; both are matched case-insensitively.
// Unrecognized colors fall back to silver base, grey cap and yellow rings
// unless the Translator is strict. Structurally malformed items (bad model
// code, ring index outside the item's complexity) are always rejected.
package translate
