package emst

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// Naive mode must produce bitwise-identical output regardless of worker
// count: the merge step's ordering feeds directly into edge selection.
func TestNaiveParallelMatchesSequential(t *testing.T) {
	r := rand.New(rand.NewSource(31))

	for _, n := range []int{2, 7, 40, 100} {
		points := randomPoints(r, n, 2)

		sequential, _ := computeMST(t, points, Config{Naive: true, Workers: 1})
		for _, workers := range []int{2, 4, 9} {
			parallel, _ := computeMST(t, points, Config{Naive: true, Workers: workers})
			assert.True(t, mat.Equal(sequential, parallel),
				"n=%d workers=%d diverged from sequential", n, workers)
		}
	}
}

func TestNaiveParallelMoreWorkersThanPoints(t *testing.T) {
	r := rand.New(rand.NewSource(37))
	points := randomPoints(r, 5, 2)

	sequential, _ := computeMST(t, points, Config{Naive: true, Workers: 1})
	parallel, _ := computeMST(t, points, Config{Naive: true, Workers: 64})
	require.True(t, mat.Equal(sequential, parallel))
}
