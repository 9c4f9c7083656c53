// Package textutil provides filename sanitization for titles that come from
// remote media metadata.
package textutil
