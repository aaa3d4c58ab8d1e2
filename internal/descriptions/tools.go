package descriptions

// Tool descriptions with practical examples and use cases

const (
	FormConvertDescription = `Convert raw hierarchical document data into an editable, typed form model.

**When to use:** An analysis step produced loosely-typed nested JSON (sections, fields, tables with inconsistent conventions) and you need a well-typed Section/Field model to edit or render.

**Why it's useful:** Handles the producer's quirks automatically: page-number suffixes on keys, per-field _type wrappers, column-order hints, flat vs. column-oriented tables, grouped multi-header tables, and shared-prefix section grouping.

**Examples:**
• Build a form from analysis output: "Convert the extracted invoice JSON into editable sections"
• Re-convert after re-analysis while keeping user edits: pass prior_fields so confirmed type corrections survive

**Best practices:** Pass the previously persisted field list as prior_fields whenever one exists; matched fields keep their confirmed type and required flag instead of reverting to fresh inference.`

	FormSerializeDescription = `Serialize an edited form model back into the hierarchical JSON shape.

**When to use:** The user finished editing the Section/Field model and the result must be persisted in the same shape the analysis step produces.

**Why it's useful:** Emits type-appropriate default placeholders for fields without values (empty table row, empty option list, blank signature record) and disambiguates colliding keys with numeric suffixes so nothing is dropped.

**Best practices:** Persist the model itself alongside this serialization; the hierarchical shape does not carry _keyOrder/_columnOrder/_type metadata and is not byte-for-byte round-trippable on its own.`

	FormInspectDescription = `Report how each top-level key of a hierarchical document would be classified.

**When to use:** A document converted into an unexpected shape (a table rendered as plain fields, or vice versa) and you need to see the per-key decisions.

**Why it's useful:** Shows, with evidence, whether each key was treated as metadata, a scalar, a typed wrapper, a flat or grouped table, or a nested section, without building the model.`

	FormSeedPDFDescription = `Build a raw hierarchical document from a PDF's interactive form fields.

**When to use:** No analysis output exists yet and you want to bootstrap a form model from a fillable PDF.

**Why it's useful:** Walks the AcroForm dictionary for typed fields (text, checkbox, radio, select, signature) with values, options and positions; PDFs without an interactive form fall back to a heuristic text-pattern scan.

**Best practices:** Feed the result straight into form_convert; the seeded document uses the same field-wrapper convention the analysis service produces.`

	FormEngineInfoDescription = `Get engine information: version, limits, supported field types and available tools.`
)
