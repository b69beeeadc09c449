// Package dependent keeps a product choice select and a quantity label in step
// with the product type chosen on the same form.
//
// A Synchronizer is created per form with Bind, which resolves the elements
// named by a Binding against a Document. When any declared element is missing
// Bind reports false and the caller simply skips the form. Init runs the first
// pass (label update plus an initial product load when the type is already
// set, as on edit pages) and subscribes to type changes.
//
// Product loads are asynchronous. Each load takes a sequence number and a
// response is applied only while its number is still the latest, so a slow
// response for an earlier type never overwrites the options of a newer one.
package dependent
