/*
Package document loads text files into mutable buffers and writes them back.

	+-----------+   Load    +------------+   patch.ApplyAll   +------------+
	|   disk    | --------> |  Document  | -----------------> |  Document  |
	+-----------+           | (original) |                    | (changed)  |
	      ^                 +------------+                    +-----+------+
	      |                                                         |
	      +----------------------- Save (atomic) -------------------+

🎯 Purpose:
- Own the only file I/O in a patch run
- Keep the original content around so callers can diff and skip no-op writes
- Write atomically and keep the file mode

🔍 Example:

	store := document.NewStore(root)
	doc, err := store.Load(ctx, "src/app/layout.tsx")
	results := patch.ApplyAll(ctx, doc, ops)
	if doc.Changed() {
		err = store.Save(ctx, doc)
	}
*/
package document
