package mcpserver

// NoteFormatContract describes the canonical Markdown note format that
// LLM consumers should follow when creating or updating notes.
const NoteFormatContract = `# Ansuz Note Format Contract

Every Markdown note stored in Ansuz MUST follow this structure.

## Structure

` + "```" + `markdown
---
id: unique-node-id                  # REQUIRED – stable identity of the file node
title: Human-readable title         # REQUIRED – primary display name
aliases:                            # OPTIONAL – alternative titles; each becomes
  - Another Name                    #   its own selection candidate
tags:                               # OPTIONAL – YAML list; used for filtering
  - tag-one
refs:                               # OPTIONAL – external references, "type:value"
  - cite:smith2020
todo: TODO                          # OPTIONAL – TODO | DONE | WAIT
priority: A                         # OPTIONAL – A | B | C
---

Body text in standard Markdown.

## A sub-node heading {#heading-node-id}

Headings carrying a {#id} anchor become addressable nodes of their own,
with an outline path derived from heading nesting. Headings without an
anchor are plain structure.
` + "```" + `

## Rules

1. **YAML frontmatter is mandatory.** The ` + "```" + `---` + "```" + ` fences must be the first
   thing in the file (no leading blank lines).
2. **` + "`" + `id` + "`" + ` is required** for the file to produce nodes at all. A file without
   an id is stored but never offered for selection.
3. **` + "`" + `title` + "`" + ` is required.** It is the primary candidate label; aliases add
   further labels resolving to the same node.
4. **Tags** are lowercase, kebab-case (e.g. ` + "`" + `project-x` + "`" + `, ` + "`" + `meeting-notes` + "`" + `).
5. **Refs** use the ` + "`" + `type:value` + "`" + ` form (` + "`" + `cite:key` + "`" + `, ` + "`" + `https://...` + "`" + `).
6. **Heading anchors** use ` + "`" + `{#id}` + "`" + ` at the end of an ATX heading. The id must
   start with a letter or digit and may contain ` + "`" + `-` + "`" + ` and ` + "`" + `_` + "`" + `.
7. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
8. **Encoding** is UTF-8 with a trailing newline.

## Example

` + "```" + `markdown
---
id: standup-2026-08-31
title: Weekly standup 2026-08-31
aliases:
  - Monday standup
tags:
  - meeting-notes
  - project-x
---

Attendees: Alice, Bob.

## Action items {#standup-2026-08-31-actions}

- Alice to review the design doc
- Bob to update the roadmap
` + "```" + `
`
