package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickRandomWordStaysInBank(t *testing.T) {
	bank := make(map[string]bool, len(wordBank))
	for _, w := range wordBank {
		bank[w] = true
	}

	for i := 0; i < 100; i++ {
		assert.True(t, bank[pickRandomWord()])
	}
}
