// Package report renders a planned task list for humans (aligned text
// blocks) or machines (one JSON document). Both encodings are produced from
// the same in-memory TaskReport values, so they describe the same facts by
// construction.
package report
