package queue_test

import (
	"math"
	"testing"

	"fifoq/internal/queue"
)

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{42, "42"},
		{-2.5, "-2.5"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{-1.5e-9, "-1.5e-9"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.25e22, "1.25e+22"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
	}
	for _, tc := range cases {
		if got := queue.FormatNumber(tc.in); got != tc.want {
			t.Fatalf("FormatNumber(%v) = %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestQueueLabelsUseExponentForExtremeIDs(t *testing.T) {
	q := queue.New([]queue.Item{{"id": queue.Number(1e21)}, {"id": queue.Number(1e-7)}})
	if got := q.String(); got != "<- [1e+21]  [1e-7] <-" {
		t.Fatalf("String = %q", got)
	}
}
