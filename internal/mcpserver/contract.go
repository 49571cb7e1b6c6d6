package mcpserver

// NoteRulesURI identifies the note rules resource.
const NoteRulesURI = "mininotes://note-rules"

// NoteRules tells LLM consumers what the store accepts before they call create_note.
const NoteRules = `# Mini Notes: note rules

A note has four fields: ` + "`id`, `title`, `content`, `created_at`" + `.
The server assigns ` + "`id`" + ` (a UUID) and ` + "`created_at`" + ` (UTC, RFC 3339).

## Creating

1. ` + "`title`" + ` is required. Surrounding whitespace is trimmed; the result must be
   non-empty and at most 200 characters.
2. ` + "`content`" + ` is required. Surrounding whitespace is trimmed; the result must be
   non-empty. There is no upper limit beyond the 1 MiB request cap.
3. Notes are immutable. There is no update or delete; create a new note instead.

## Searching

` + "`list_notes`" + ` with a ` + "`query`" + ` returns notes whose title or content contains
the query as a case-insensitive substring, in creation order. An empty query returns
every note. There is no ranking and no pagination.
`
