// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

// Package validation wraps go-playground/validator with a singleton instance
// and human-readable error messages.
//
// # Custom Tags
//
//   - maptype: Collaborative, Competitive or Personal
//   - category: a known point category, or empty
//   - sortkey: date, city or country
//   - sortorder: asc or desc
//
// Errors are returned as *RequestValidationError listing every failed field;
// ToAPIError flattens it to a models.APIError with the VALIDATION_ERROR code.
package validation
