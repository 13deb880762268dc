// Package sanitizer normalizes free-form input before validation and storage.
//
// All normalization functions are idempotent. Invalid input is handled by
// returning an empty or trimmed value rather than an error; validators decide
// whether the result is acceptable.
//
// Normalization includes:
//   - Phone numbers: E.164 for the agency's regions (DE, AT, CH, TR, US)
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Codes (PNR, IATA): upper case, letters and digits only
//   - Emails: trimmed and lower case
//   - URLs: https scheme, lower-case host
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
