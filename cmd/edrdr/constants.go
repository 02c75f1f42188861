package main

// Default limits for CLI commands.
const (
	DefaultSearchLimit = 10
	DefaultSampleSize  = 10
)

// Valid export formats.
var validFormats = []string{"json", "csv"}

// indexDataset names the search collection of company snapshots.
const indexDataset = "companies"
