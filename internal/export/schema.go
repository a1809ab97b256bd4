package export

// Schema DDL for the export database. body holds the compact JSON of one
// response so json_extract(body, '$.q1') works on it.
const (
	createResponses = `CREATE TABLE responses (
    seq INTEGER PRIMARY KEY,
    body TEXT NOT NULL,
    exported_at TEXT NOT NULL
);`

	createExportMeta = `CREATE TABLE export_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

	insertResponse   = `INSERT INTO responses (seq, body, exported_at) VALUES (?, ?, ?)`
	insertExportMeta = `INSERT INTO export_meta (key, value) VALUES (?, ?)`
)

var schemaStatements = []string{
	createResponses,
	createExportMeta,
}
