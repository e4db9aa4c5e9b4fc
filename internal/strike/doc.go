// Package strike turns feed entry titles into strike records, matches them
// against user conditions and derives the identity used for deduplication.
//
// Titles published by the MIT strike feed look like:
//
//	Data inizio: 05/05/2025 - Settore: Trasporto - Rilevanza: Alta - Regione: Lazio - Provincia: Roma
//
// Every field is optional. Values are opaque strings: dates are not parsed
// and sectors/regions are compared verbatim.
package strike
