// Package errors provides coded diagnostics for cachestore.
//
// Every condition the store reports has a code (e.g., "CS001") that maps to a
// short message, an explanation and, where one exists, a suggested fix. Fatal
// access errors additionally carry the source location of the offending call
// so the diagnostic can show the surrounding lines.
//
// # Error Categories
//
//   - access: Resolve/Update contract violations (missing key, type mismatch)
//   - scope: key transform and scoped write problems
//   - action: dropped or ignored dispatches
//   - config: cachestore.json loading and validation
//   - cli, devtools: command line and inspector errors
//
// # Usage
//
//	err := errors.New("CS001").
//	    At("app/counter.go", 15).
//	    WithDetail(`key "count" has no value`)
//
//	fmt.Print(err.Format())
//	// Output:
//	// CS001 Missing key (access)
//	//   at app/counter.go:15
//	//        13  func render(c *cachestore.KeyedCache[Key]) {
//	//        14      // ...
//	//   >    15      n := cachestore.Resolve[int](c, Count)
//	//        16  }
//	//   key "count" has no value
//	//   fix: Add the key to the initial values, or read it with Lookup and handle the absent case
//
// FormatCompact gives the same diagnostic on one line and FormatJSON as an
// object. Set NO_COLOR, or call SetColor(false), for plain output.
package errors
