/**
 * Copyright (c) 2018, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package numbers

import "strings"

// vertex is the concrete adapter.Vertex this package hands the interpreter: one integer, plus
// whatever its type name resolves to (Prime, Composite or Neither).
type vertex struct {
	value int64
}

// TypeName classifies n the way schema.go declares: 0 and 1 are Neither, then prime or composite.
func TypeName(n int64) string {
	if n < 2 {
		return "Neither"
	}
	if isPrime(n) {
		return "Prime"
	}
	return "Composite"
}

func isPrime(n int64) bool {
	if n < 2 {
		return false
	}
	for i := int64(2); i*i <= n; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// primeFactors returns n's distinct prime factors in ascending order.
func primeFactors(n int64) []int64 {
	var out []int64
	if n < 2 {
		return out
	}
	remaining := n
	for p := int64(2); p*p <= remaining; p++ {
		if remaining%p == 0 {
			out = append(out, p)
			for remaining%p == 0 {
				remaining /= p
			}
		}
	}
	if remaining > 1 {
		out = append(out, remaining)
	}
	return out
}

// divisors returns every positive divisor of n, including 1 and n itself, in ascending order.
func divisors(n int64) []int64 {
	var out []int64
	if n < 1 {
		return out
	}
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			out = append(out, d)
			if other := n / d; other != d {
				out = append(out, other)
			}
		}
	}
	// insertion sort: divisors() is only ever called against the small bounded universe this
	// reference adapter serves, so an O(n^2) sort here is not worth a sort.Slice import.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// name spells n out in English, lowercased, for |n| < 100 and returns "big" beyond that; it exists purely so the "name"/"vowelsInName"
// properties (carried over from the teacher's own numbers-flavored fixtures) have something
// non-trivial to compute over.
func name(n int64) string {
	if n < 0 {
		return "negative " + name(-n)
	}
	if n < int64(len(onesNames)) {
		return onesNames[n]
	}
	if n < 100 {
		tens := tensNames[n/10]
		if n%10 == 0 {
			return tens
		}
		return tens + "-" + onesNames[n%10]
	}
	return "big"
}

var onesNames = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen",
	"eighteen", "nineteen",
}

var tensNames = []string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}

func vowelsInName(n int64) int64 {
	var count int64
	for _, r := range name(n) {
		if strings.ContainsRune("aeiou", r) {
			count++
		}
	}
	return count
}
