package main

import (
	"math/rand"
)

// Words drawn from during a game. Picks are uniform and may repeat
// the previous word.
var wordBank = []string{
	"apple",
	"car",
	"banana",
	"pizza",
	"tree",
	"house",
	"dog",
	"star",
	"laptop",
	"guitar",
}

func pickRandomWord() string {
	return wordBank[rand.Intn(len(wordBank))]
}
