// Package diffs defines the catalog of version-tagged locator diffs a
// resolver folds over its baseline.
//
// Responsibilities:
//   - Repository only enumerates versions and loads one sparse override per
//     version. It knows nothing about baselines or ordering.
//   - MemoryRepository backs tests and programmatic catalogs.
//   - FSRepository scans a directory of an fs.FS (embed.FS, os.DirFS) for
//     files named after a version ("1.42.yaml", "1.43.0.json") and decodes
//     them into locator trees.
//
// Data flow:
//
//	Repository.List -> layering.NewChain -> Repository.Load -> layering.Merge
package diffs
