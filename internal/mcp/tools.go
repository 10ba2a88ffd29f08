package mcp

import "github.com/mark3labs/mcp-go/mcp"

const keyHelp = `Record key as "<spec_no>:<revision>", e.g. "TS-101:B"`

var upsertToolDef = mcp.NewTool("spec_upsert",
	mcp.WithDescription("Create a specification record, or update the title/notes of an existing one. Omitted fields keep their stored value."),
	mcp.WithString("spec_no", mcp.Required(), mcp.Description("Specification number")),
	mcp.WithString("revision", mcp.Required(), mcp.Description("Revision")),
	mcp.WithString("title", mcp.Description("Human-readable title")),
	mcp.WithString("notes", mcp.Description("Free-form notes (markdown)")),
)

var getToolDef = mcp.NewTool("spec_get",
	mcp.WithDescription("Get a specification record and the state of its attachments."),
	mcp.WithString("key", mcp.Required(), mcp.Description(keyHelp)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var listToolDef = mcp.NewTool("spec_list",
	mcp.WithDescription("List specification records ordered by key."),
	mcp.WithNumber("limit", mcp.Description("Max items (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var rekeyToolDef = mcp.NewTool("spec_rekey",
	mcp.WithDescription("Move a record to a new key. Attachments move with it."),
	mcp.WithString("old_key", mcp.Required(), mcp.Description(keyHelp)),
	mcp.WithString("new_key", mcp.Required(), mcp.Description(keyHelp)),
)

var attachToolDef = mcp.NewTool("spec_attach",
	mcp.WithDescription("Copy a file into the content store and attach it to a record."),
	mcp.WithString("key", mcp.Required(), mcp.Description(keyHelp)),
	mcp.WithString("kind", mcp.Required(), mcp.Description("Attachment kind"), mcp.Enum("doc", "txt", "pdf")),
	mcp.WithString("path", mcp.Required(), mcp.Description("File to attach: .doc/.docx for doc, .txt for txt, .pdf for pdf")),
)

var normalizeToolDef = mcp.NewTool("spec_normalize",
	mcp.WithDescription("Convert a record's original document to plain text and attach the text."),
	mcp.WithString("key", mcp.Required(), mcp.Description(keyHelp)),
)

var normalizeBatchToolDef = mcp.NewTool("spec_normalize_batch",
	mcp.WithDescription("Normalize many records. Failures are reported per key and never stop the batch."),
	mcp.WithArray("keys", mcp.Description("Keys to normalize; omit for every record with an original document"), mcp.WithStringItems()),
)

var compareToolDef = mcp.NewTool("spec_compare",
	mcp.WithDescription("Diff the normalized text of two records and write an HTML document showing the changes."),
	mcp.WithString("key_a", mcp.Required(), mcp.Description("Older side. "+keyHelp)),
	mcp.WithString("key_b", mcp.Required(), mcp.Description("Newer side. "+keyHelp)),
	mcp.WithString("mode", mcp.Description("Cleanup mode (default efficiency)"), mcp.Enum("raw", "semantic", "efficiency")),
	mcp.WithString("output_path", mcp.Description("Destination .html file (default <output_dir>/diff.html)")),
	mcp.WithBoolean("open", mcp.Description("Open the document with the default viewer")),
)

var diffToolDef = mcp.NewTool("spec_diff",
	mcp.WithDescription("Diff two files or two texts directly and write an HTML document."),
	mcp.WithString("content_type", mcp.Description("How a and b are interpreted (default file)"), mcp.Enum("file", "text")),
	mcp.WithString("a", mcp.Required(), mcp.Description("First path or text")),
	mcp.WithString("b", mcp.Required(), mcp.Description("Second path or text")),
	mcp.WithString("mode", mcp.Description("Cleanup mode (default efficiency)"), mcp.Enum("raw", "semantic", "efficiency")),
	mcp.WithString("output_path", mcp.Description("Destination .html file")),
	mcp.WithBoolean("open", mcp.Description("Open the document with the default viewer")),
	mcp.WithBoolean("include_segments", mcp.Description("Return the edit script in the result")),
)

var historyToolDef = mcp.NewTool("spec_history",
	mcp.WithDescription("List recent comparisons, newest first."),
	mcp.WithNumber("limit", mcp.Description("Max items (default 20, max 200)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var cleanToolDef = mcp.NewTool("spec_clean",
	mcp.WithDescription("Find stored files no record references and remove them."),
	mcp.WithBoolean("dry_run", mcp.Description("Report without removing")),
	mcp.WithDestructiveHintAnnotation(true),
)
