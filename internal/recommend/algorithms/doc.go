// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

// Package algorithms implements the matrix factorization model used by the
// warm recommendation path.
//
// ALS trains offline from a recommend.Matrix of confidences and serves
// online through the recommend.Model interface. Children added after
// training are folded in from their current interaction row.
//
// # Thread Safety
//
// Training acquires an exclusive lock while prediction uses a shared lock.
package algorithms
