/*
Package operation converts many files on disk in one batch.

	+-------------+
	|    Plan     |
	| (globs)     |
	+------+------+
	       |
	+------+------+
	|   Execute   |
	| (rewrite)   |
	+------+------+
	       |
	+------+------+
	|   Summary   |
	+-------------+

🔄 Flow:
1. Plan expands the include globs under the root and drops ignored files
   and files that are themselves conversion outputs
2. Execute converts each planned file with a bounded errgroup
3. Each file is written next to its source as <stem><suffix><ext>
4. A brace mismatch fails that file only; the rest of the batch continues

🔍 Example:

	op, err := operation.New(operation.Options{
		Config:   cfg,
		Root:     ".",
		Rewriter: rewrite.NewDelimiterRewriter(),
	})
	if err != nil {
		return err
	}
	summary, err := op.Execute(ctx)
*/
package operation
