package catalog

// All returns the built-in patch definitions in application order. The
// patterns are written against the minified bundle, so identifiers are
// matched loosely and literal strings anchor each site. The engine compiles
// every pattern with the s flag so the dot crosses line boundaries in
// pretty-printed bundles too. Each replacement wraps its value in a pair of
// marker comments (/*csp1*/ .. /*1csp*/) that the probe patterns key on.
func All() []Definition {
	return []Definition{
		// =====================================================================
		// machineId — telemetry machine identifier
		// =====================================================================

		// The bundle assigns the identifier from a lookup call that takes a
		// trailing options object with a timeout, then unwraps the result:
		//   i.machineId=dW(this.b,{timeout:5e3}).value(),
		{
			Kind:        KindMachineID,
			Title:       "MachineId",
			Find:        `=\s*[\w.$_]+\s*\([^)]+\{[^}]*?timeout\s*:\s*[\d.e+-]+[^}]*?\}\s*\)\s*\.\s*[\w.$_]+\s*\(\s*\)\s*,`,
			Probe:       `=\s*/\*csp1\*/[^/]+/\*1csp\*/\s*,`,
			Replacement: `=/*csp1*/"{value}"/*1csp*/,`,
		},

		// =====================================================================
		// macAddress — first non-loopback interface address
		// =====================================================================

		// The bundle iterates the interface table inside a helper function and
		// throws when nothing usable is found. The whole body is replaced with
		// a bare return, keeping the function's opening and closing braces via
		// the two capture groups.
		{
			Kind:        KindMacAddress,
			Title:       "Mac Address",
			Find:        `(function\s+\w+\s*\([^)]*\)\s*\{)\s*const\s+\w+\s*=\s*\w+\(\);\s*for\s*\(\s*const\s+\w+\s*in\s*\w+\s*\)\s*\{.*?"Unable\s+to\s+retrieve\s+mac\s+address.*?\s*throw\s+new\s+Error\s*\([^)]*\);\s*(\})`,
			Probe:       `(function\s+\w+\s*\([^)]*\)\s*\{)\s*return\s*/\*csp2\*/[^/]+/\*2csp\*/;\s*(\})`,
			Replacement: `${1}return/*csp2*/"{value}"/*2csp*/;${2}`,
		},

		// =====================================================================
		// sqmId — Windows SQM client id from the registry
		// =====================================================================

		// Read via GetStringRegKey from HKEY_LOCAL_MACHINE with an empty
		// string fallback. The registry path itself is a minified variable, so
		// only the hive and value name anchor the match. Windows only.
		{
			Kind:        KindSqmID,
			Title:       "Windows SQM Id",
			OS:          []string{"windows"},
			Find:        `return\s*\([\w.$_]+\.GetStringRegKey\s*\(\s*['"]HKEY_LOCAL_MACHINE['"]\s*,\s*[\w.$_]+\s*,\s*['"]MachineId['"]\s*\)\s*\|\|\s*['"]{2}\s*\)`,
			Probe:       `return\s*/\*csp3\*/[^/]+/\*3csp\*/`,
			Replacement: `return/*csp3*/"{value}"/*3csp*/`,
		},

		// =====================================================================
		// devDeviceId — @vscode/deviceid device identifier
		// =====================================================================

		// A dynamic import of the deviceid package, optionally awaited and
		// optionally parenthesized, depending on how the bundler lowered it.
		{
			Kind:        KindDevDeviceID,
			Title:       "devDeviceId",
			Find:        `return\s+(?:await\s+)?(?:\(\s*await\s+)?import\s*\(\s*['"]@vscode/deviceid['"]\s*\)\s*\)\s*\.getDeviceId\s*\(\s*\)`,
			Probe:       `return\s*/\*csp4\*/[^/]+/\*4csp\*/`,
			Replacement: `return/*csp4*/"{value}"/*4csp*/`,
		},
	}
}
