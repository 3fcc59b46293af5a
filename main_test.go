package main

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestClearColor(t *testing.T) {
	tests := []struct {
		hue  float32
		want [4]float32
	}{
		{0, [4]float32{1, 0, 0, 1}},
		{1.0 / 3, [4]float32{0, 1, 0, 1}},
		{2.0 / 3, [4]float32{0, 0, 1, 1}},
		{1, [4]float32{1, 0, 0, 1}},
		{1.5, [4]float32{0, 1, 1, 1}},
	}

	for _, test := range tests {
		g := NewWithT(t)
		got := clearColor(test.hue)
		for i := range got {
			g.Expect(got[i]).To(BeNumerically("~", test.want[i], 1e-5), "hue %v", test.hue)
		}
	}
}
