/*
Package config loads texbra settings for batch conversion.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	   +-------+-------+-------+-------+
	   |       |               |       |
	+--+--+ +--+--+        +---+--+ +--+---+
	| YAML| | HCL |        | JSON | | TOML |
	+-----+ +-----+        +------+ +------+

🎯 Purpose:
- Picks a Parser by file extension
- Decodes strictly: unknown keys are errors in every format
- Applies defaults and validates globs, extensions and log level

🔍 Example:

	cfg, err := config.Load(ctx, ".texbra.yaml")
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

HCL files can read the environment through the `env` object:

	include     = ["${env.TEX_ROOT}/*.tex"]
	concurrency = 8
*/
package config
