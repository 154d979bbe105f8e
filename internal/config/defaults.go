package config

// defaultExclusions is the exclude list a Config starts with before any
// project .gitignore or .symindex.kdl patterns are merged in. It is
// scoped to the source ecosystems this module's grammars actually
// parse (Go, JS/TS, Python, Rust, C/C++, Java, C#, PHP, Zig) rather
// than every build system in existence.
func defaultExclusions() []string {
	return []string{
		// version control
		"**/.git/**",
		"**/.hg/**",
		"**/.svn/**",

		// Go
		"**/vendor/**",

		// JavaScript / TypeScript
		"**/node_modules/**",
		"**/dist/**",
		"**/.next/**",
		"**/coverage/**",

		// Python
		"**/__pycache__/**",
		"**/*.pyc",
		"**/.venv/**",
		"**/venv/**",
		"**/.mypy_cache/**",
		"**/.pytest_cache/**",
		"**/*.egg-info/**",

		// Rust
		"**/target/**",

		// C / C++
		"**/cmake-build-*/**",
		"**/*.o",
		"**/*.obj",

		// Java / Kotlin (Gradle, Maven)
		"**/build/**",
		"**/.gradle/**",
		"**/*.class",

		// C#
		"**/bin/**",
		"**/obj/**",

		// PHP
		"**/vendor/composer/**",

		// Zig
		"**/zig-cache/**",
		"**/zig-out/**",

		// editors / IDEs
		"**/.vscode/**",
		"**/.idea/**",

		// OS cruft
		"**/.DS_Store",
		"**/Thumbs.db",
	}
}
