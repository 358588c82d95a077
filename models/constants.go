package models

/* The general trend here is we prefix the type of the constant */

// ---------------------------

const (
	OperatorIndexOf   = "indexOf"
	OperatorEquals    = "=="
	OperatorNotEquals = "!="
)

// ---------------------------

const (
	FieldId         = "id"
	FieldFilename   = "filename"
	FieldPath       = "path"
	FieldUploadDate = "uploadDate"
	FieldType       = "type"
	FieldSize       = "size"
)

// ---------------------------

const (
	// The collection holding metadata of uploaded files. Blobs live next to
	// it in per extension sub directories.
	CollectionUploads = "uploads"
	// Every collection directory holds a single data file with the JSON array.
	CollectionDataFile = "data.json"
)
