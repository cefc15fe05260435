// Saifi - Child Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/saifi

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/tomtom215/saifi/internal/recommend"
)

// ALSConfig contains configuration for the ALS algorithm.
type ALSConfig struct {
	// NumFactors is the dimension of the latent factor vectors.
	// Typical range: 16-128.
	NumFactors int

	// NumIterations is the number of ALS sweeps to run.
	NumIterations int

	// Regularization is the L2 regularization parameter.
	// Typical range: 0.01-0.1.
	Regularization float64

	// NumWorkers is the number of parallel workers for training.
	// If <= 0, defaults to 4.
	NumWorkers int

	// Seed makes factor initialization reproducible.
	Seed int64
}

// DefaultALSConfig returns default ALS configuration.
func DefaultALSConfig() ALSConfig {
	return ALSConfig{
		NumFactors:     32,
		NumIterations:  15,
		Regularization: 0.01,
		NumWorkers:     4,
		Seed:           42,
	}
}

// ALS implements Alternating Least Squares for implicit feedback.
// Reference: "Collaborative Filtering for Implicit Feedback Datasets" (Hu, Koren, Volinsky, 2008)
//
// It factorizes the child x activity confidence matrix. Matrix values are
// taken as confidences c_ui (already 1 + alpha*rating); every stored cell has
// preference p_ui = 1 and every absent cell has p_ui = 0 with confidence 1.
//
// The objective function minimizes:
// sum_{u,i} c_ui * (p_ui - x_u' * y_i)^2 + lambda * (||x_u||^2 + ||y_i||^2)
type ALS struct {
	ModelState
	config ALSConfig

	// X is the user factor matrix (numUsers x numFactors)
	X [][]float64

	// Y is the item factor matrix (numItems x numFactors)
	Y [][]float64

	// yty caches Y'Y for fold-in of users unseen at training time.
	yty [][]float64
}

// NewALS creates a new ALS algorithm with the given configuration.
func NewALS(cfg ALSConfig) *ALS {
	if cfg.NumFactors <= 0 {
		cfg.NumFactors = 32
	}
	if cfg.NumIterations <= 0 {
		cfg.NumIterations = 15
	}
	if cfg.Regularization <= 0 {
		cfg.Regularization = 0.01
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 4
	}

	return &ALS{
		ModelState: newModelState("als"),
		config:     cfg,
	}
}

// NewALSFromFactors restores a trained model from its factor matrices.
func NewALSFromFactors(cfg ALSConfig, users, items [][]float64) (*ALS, error) {
	if len(items) == 0 {
		return nil, errors.New("als: no item factors")
	}
	k := len(items[0])
	for i, row := range items {
		if len(row) != k {
			return nil, fmt.Errorf("als: item %d has %d factors, want %d", i, len(row), k)
		}
	}
	for u, row := range users {
		if len(row) != k {
			return nil, fmt.Errorf("als: user %d has %d factors, want %d", u, len(row), k)
		}
	}

	cfg.NumFactors = k
	a := NewALS(cfg)
	a.X = users
	a.Y = items
	a.yty = gram(items, k)
	a.markTrained()
	return a, nil
}

// Config returns the effective configuration.
func (a *ALS) Config() ALSConfig {
	return a.config
}

// Fit trains the model on a child x activity confidence matrix.
func (a *ALS) Fit(ctx context.Context, m *recommend.Matrix) error {
	a.acquireTrainLock()
	defer a.releaseTrainLock()

	if canceled(ctx) {
		return ctx.Err()
	}
	if m == nil {
		return errors.New("als: nil matrix")
	}

	numUsers, numItems := m.Shape()
	numFactors := a.config.NumFactors
	if numUsers == 0 || numItems == 0 {
		a.X, a.Y, a.yty = nil, nil, nil
		a.markTrained()
		return nil
	}

	itemUsers := m.Transpose()

	// Small random initialization
	rng := rand.New(rand.NewSource(a.config.Seed)) //nolint:gosec // math/rand is fine for factor initialization
	a.X = randomFactors(rng, numUsers, numFactors)
	a.Y = randomFactors(rng, numItems, numFactors)

	lambda := a.config.Regularization

	for iter := 0; iter < a.config.NumIterations; iter++ {
		if canceled(ctx) {
			return ctx.Err()
		}

		// Update user factors (fix Y, solve for X)
		a.solveSide(a.X, a.Y, m, numFactors, lambda)

		if canceled(ctx) {
			return ctx.Err()
		}

		// Update item factors (fix X, solve for Y)
		a.solveSide(a.Y, a.X, itemUsers, numFactors, lambda)
	}

	a.yty = gram(a.Y, numFactors)
	a.markTrained()
	return nil
}

func randomFactors(rng *rand.Rand, rows, k int) [][]float64 {
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, k)
		for f := range out[r] {
			out[r][f] = 0.01 * rng.NormFloat64()
		}
	}
	return out
}

// gram returns M'M for a rows x k matrix.
func gram(m [][]float64, k int) [][]float64 {
	g := make([][]float64, k)
	for f := range g {
		g[f] = make([]float64, k)
	}
	for _, row := range m {
		for f1 := 0; f1 < k; f1++ {
			for f2 := f1; f2 < k; f2++ {
				g[f1][f2] += row[f1] * row[f2]
			}
		}
	}
	for f1 := 0; f1 < k; f1++ {
		for f2 := 0; f2 < f1; f2++ {
			g[f1][f2] = g[f2][f1]
		}
	}
	return g
}

// solveSide recomputes every row of target with fixed held constant. conf
// holds one confidence row per target row.
//
//nolint:gocritic // fixed/target follow the alternating notation
func (a *ALS) solveSide(target, fixed [][]float64, conf *recommend.Matrix, numFactors int, lambda float64) {
	// Precompute F'F
	ftf := gram(fixed, numFactors)

	n := len(target)
	var wg sync.WaitGroup
	chunkSize := (n + a.config.NumWorkers - 1) / a.config.NumWorkers

	for w := 0; w < a.config.NumWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			break
		}

		wg.Add(1)
		go func(rStart, rEnd int) {
			defer wg.Done()

			for r := rStart; r < rEnd; r++ {
				target[r] = solveRow(conf.Row(r), fixed, ftf, numFactors, lambda)
			}
		}(start, end)
	}

	wg.Wait()
}

// solveRow solves one least squares row.
//
// A = F'F + F' (C - I) F + lambda * I
// b = F' C p
func solveRow(row recommend.SparseRow, fixed, ftf [][]float64, numFactors int, lambda float64) []float64 {
	A := make([][]float64, numFactors)
	for f := range A {
		A[f] = make([]float64, numFactors)
		copy(A[f], ftf[f])
		A[f][f] += lambda
	}

	b := make([]float64, numFactors)
	for n, j := range row.Indices {
		c := row.Values[n]
		v := fixed[j]
		cMinus1 := c - 1.0

		for f1 := 0; f1 < numFactors; f1++ {
			for f2 := f1; f2 < numFactors; f2++ {
				delta := cMinus1 * v[f1] * v[f2]
				A[f1][f2] += delta
				if f1 != f2 {
					A[f2][f1] += delta
				}
			}
			b[f1] += c * v[f1]
		}
	}

	return solveLinearSystem(A, b)
}

// solveLinearSystem solves A*x = b using Cholesky decomposition.
//
//nolint:gocritic // A, L follow standard linear algebra notation
func solveLinearSystem(A [][]float64, b []float64) []float64 {
	n := len(b)

	// Cholesky decomposition: A = L * L'
	L := make([][]float64, n)
	for i := range L {
		L[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := A[i][j]
			for k := 0; k < j; k++ {
				sum -= L[i][k] * L[j][k]
			}

			if i == j {
				if sum <= 0 {
					// Not positive definite, nudge the pivot
					sum = 1e-10
				}
				L[i][j] = math.Sqrt(sum)
			} else if L[j][j] != 0 {
				L[i][j] = sum / L[j][j]
			}
		}
	}

	// Solve L * z = b (forward substitution)
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for j := 0; j < i; j++ {
			sum -= L[i][j] * z[j]
		}
		if L[i][i] != 0 {
			z[i] = sum / L[i][i]
		}
	}

	// Solve L' * x = z (back substitution)
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for j := i + 1; j < n; j++ {
			sum -= L[j][i] * x[j]
		}
		if L[i][i] != 0 {
			x[i] = sum / L[i][i]
		}
	}

	return x
}

// NumItems returns the number of item factor rows.
func (a *ALS) NumItems() int {
	a.acquirePredictLock()
	defer a.releasePredictLock()
	return len(a.Y)
}

// NumUsers returns the number of user factor rows.
func (a *ALS) NumUsers() int {
	a.acquirePredictLock()
	defer a.releasePredictLock()
	return len(a.X)
}

// Recommend returns the topN items by x_u'y_i. Previously seen items are not
// filtered. A user index beyond the trained factors is folded in from
// userRow; with an empty row it is rejected.
func (a *ALS) Recommend(userIndex int, userRow recommend.SparseRow, topN int) ([]recommend.Candidate, error) {
	a.acquirePredictLock()
	defer a.releasePredictLock()

	if !a.trained || len(a.Y) == 0 {
		return nil, errors.New("als: model not trained")
	}
	if topN <= 0 {
		return nil, nil
	}

	var userVec []float64
	switch {
	case userIndex >= 0 && userIndex < len(a.X):
		userVec = a.X[userIndex]
	case userIndex >= 0 && userRow.Len() > 0:
		userVec = solveRow(userRow, a.Y, a.yty, len(a.Y[0]), a.config.Regularization)
	default:
		return nil, fmt.Errorf("als: user %d: %w", userIndex, recommend.ErrUnknownIndex)
	}

	scores := make([]recommend.Candidate, len(a.Y))
	for i, y := range a.Y {
		// score = x_u' * y_i
		var score float64
		for f := range userVec {
			score += userVec[f] * y[f]
		}
		scores[i] = recommend.Candidate{ItemIndex: i, Score: score}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	if len(scores) > topN {
		scores = scores[:topN]
	}
	return scores, nil
}

// GetUserFactors returns a copy of user factors.
func (a *ALS) GetUserFactors() [][]float64 {
	a.acquirePredictLock()
	defer a.releasePredictLock()
	return copyFactors(a.X)
}

// GetItemFactors returns a copy of item factors.
func (a *ALS) GetItemFactors() [][]float64 {
	a.acquirePredictLock()
	defer a.releasePredictLock()
	return copyFactors(a.Y)
}

func copyFactors(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	result := make([][]float64, len(m))
	for i := range m {
		result[i] = make([]float64, len(m[i]))
		copy(result[i], m[i])
	}
	return result
}

// Ensure interface compliance.
var (
	_ recommend.Model       = (*ALS)(nil)
	_ recommend.ItemCounter = (*ALS)(nil)
)
