package errors

import "sort"

// Template is the registered text for a code.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

var registry = map[string]Template{
	// access: CS001-CS009
	"CS001": {
		Category:   CategoryAccess,
		Message:    "Missing key",
		Detail:     "Resolve was called for a key that has no stored value and no default. Keys read unconditionally must be covered by the initial values passed to the constructor.",
		Suggestion: "Add the key to the initial values, or read it with Lookup and handle the absent case",
	},
	"CS002": {
		Category:   CategoryAccess,
		Message:    "Type mismatch",
		Detail:     "The stored value is not of the requested type. Every reader and writer of a key must agree on its type.",
		Suggestion: "Check the type argument passed to Resolve or Update against the value stored under this key",
	},
	"CS003": {
		Category: CategoryAccess,
		Message:  "Write to a disposed store",
		Detail:   "The store has been disposed by its owner. The write was ignored.",
	},

	// scope: CS010-CS019
	"CS010": {
		Category:   CategoryScope,
		Message:    "Unmapped scope write",
		Detail:     "The child key has no parent mapping and no local default. The write was ignored.",
		Suggestion: "Declare child-only keys with WithLocal when creating the scope",
	},
	"CS011": {
		Category:   CategoryScope,
		Message:    "Inconsistent key transform",
		Detail:     "Projecting a key and embedding it back does not return the original key.",
		Suggestion: "Make the parent-to-child and child-to-parent functions inverses on the keys they map, or build the transform with Pairs",
	},

	// action: CS020-CS029
	"CS020": {
		Category: CategoryAction,
		Message:  "Dropped action",
		Detail:   "The scoped store has no local handler for the action and the forward function did not map it to a parent action.",
	},
	"CS021": {
		Category: CategoryAction,
		Message:  "Dispatch on a disposed store",
		Detail:   "The store has been disposed by its owner. The action was ignored.",
	},

	// config: CS100-CS119
	"CS100": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Detail:     "The configuration file could not be read or parsed.",
		Suggestion: "Check that cachestore.json is valid JSON",
	},
	"CS101": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create cachestore.json or pass flags on the command line",
	},
	"CS102": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "Port must be between 0 and 65535.",
	},
	"CS103": {
		Category:   CategoryConfig,
		Message:    "Invalid log level",
		Suggestion: "Use one of debug, info, warn, error",
	},
	"CS104": {
		Category:   CategoryConfig,
		Message:    "Invalid log format",
		Suggestion: "Use one of text, json",
	},

	// cli: CS120-CS129
	"CS120": {
		Category:   CategoryCLI,
		Message:    "Unknown experiment",
		Suggestion: "Run 'cachestore gallery --list' to see the available experiments",
	},
	"CS121": {
		Category: CategoryCLI,
		Message:  "Command failed",
	},
	"CS122": {
		Category:   CategoryCLI,
		Message:    "Unknown error code",
		Suggestion: "Run 'cachestore codes' to list every code",
	},

	// devtools: CS130-CS139
	"CS130": {
		Category: CategoryDevtools,
		Message:  "Store not found",
		Detail:   "No store is registered under the requested id.",
	},
}

// Codes returns every registered code in order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the registered text for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
