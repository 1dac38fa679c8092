// Package combin provides the combinatorial primitives the rest of the
// indsod core is built on: binomial coefficients, colex subset ranking,
// a short-array sort, binary search, and set complement.
package combin

import "gonum.org/v1/gonum/stat/combin"

// Binomial returns C(n,k), the number of k-subsets of an n-set, using wide
// (64-bit) integer arithmetic. Unlike gonum's stat/combin.Binomial, which
// panics on out-of-domain input, Binomial returns 0 for k<0 or k>n, which
// is the convention the enumerator's rank arithmetic depends on (a
// "radix" of zero participants is legal and contributes nothing).
func Binomial(n, k int) int64 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	return int64(combin.Binomial(n, k))
}

// ColexRank returns the colex rank of an ascending k-subset S of {1..n}:
// rank = sum_{i=1..k} C(s_i - 1, i), the position of S among all k-subsets
// under the "compare by largest element first" order.
func ColexRank(s []int) int64 {
	var r int64
	for i, si := range s {
		r += Binomial(si-1, i+1)
	}
	return r
}

// ColexUnrank decodes the colex rank r of a k-subset of {1..n} back into
// its ascending element list. It finds each element from the top down:
// s_k is the largest value with C(s_k-1, k) <= r, then recurses on the
// remainder with k-1.
func ColexUnrank(n, k int, r int64) []int {
	s := make([]int, k)
	for i := k; i >= 1; i-- {
		// Find the largest v in [i, n] with C(v-1, i) <= r.
		v := searchLargestColex(n, i, r)
		s[i-1] = v
		r -= Binomial(v-1, i)
	}
	return s
}

// searchLargestColex finds the largest v in [i, n] such that C(v-1, i) <= r.
// Binomial(v-1, i) is non-decreasing in v, so this is a binary search over
// the monotone predicate.
func searchLargestColex(n, i int, r int64) int {
	lo, hi := i, n
	best := i
	for lo <= hi {
		mid := (lo + hi) / 2
		if Binomial(mid-1, i) <= r {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best
}

// SortInts sorts a short slice of ints ascending in place. Stability is
// not required; insertion sort is used because the slices this operates
// on (single orbits, single subsets) are short enough that asymptotic
// complexity does not matter and the implementation stays branch-simple.
func SortInts(a []int) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}

// BinarySearchLE returns the largest index i such that a[i] <= v, where a
// is ascending. If v is at least a[len(a)-1], it returns len(a)-1. If v is
// smaller than every element, it returns -1.
func BinarySearchLE(a []int, v int) int {
	lo, hi := 0, len(a)-1
	best := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if a[mid] <= v {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best
}

// Complement returns the ascending list of elements of {1..m} that do not
// appear in the ascending subset s.
func Complement(s []int, m int) []int {
	out := make([]int, 0, m-len(s))
	idx := 0
	for v := 1; v <= m; v++ {
		for idx < len(s) && s[idx] < v {
			idx++
		}
		if idx < len(s) && s[idx] == v {
			continue
		}
		out = append(out, v)
	}
	return out
}
