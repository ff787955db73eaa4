// Package locators resolves version-specific UI locator sets.
//
// A Resolver starts from a baseline locator tree pinned to one product version
// and folds an ordered chain of sparse per-version diffs over it:
//
//	repo := diffs.NewFSRepository(os.DirFS("locators"), "diffs")
//	resolver, err := locators.NewResolver(locators.Baseline{
//		Version:  "1.0",
//		Locators: baseline,
//	}, repo)
//	set, err := resolver.Resolve(ctx, "1.2")
//	sel, err := set.Selector("menu.item")
//
// Upgrades apply every diff in (baseline, target] in ascending order;
// downgrades apply every diff in [target, baseline) in descending order. The
// result is an immutable Set that page objects receive by injection.
package locators
