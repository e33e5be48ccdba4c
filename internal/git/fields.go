package git

import "strings"

// Field names one commit attribute fetched from git.
type Field string

const (
	FieldHash               Field = "hash"
	FieldSubject            Field = "subject"
	FieldAuthorName         Field = "author_name"
	FieldAuthorDate         Field = "author_date"
	FieldAuthorTimestamp    Field = "author_date_timestamp"
	FieldCommitterName      Field = "committer_name"
	FieldCommitterTimestamp Field = "committer_date_timestamp"
	FieldRawBody            Field = "raw_body"
	FieldBody               Field = "body"
)

// Fields lists every tracked field in wire order. Log records carry the
// fields in exactly this order.
var Fields = []Field{
	FieldHash,
	FieldSubject,
	FieldAuthorName,
	FieldAuthorDate,
	FieldAuthorTimestamp,
	FieldCommitterName,
	FieldCommitterTimestamp,
	FieldRawBody,
	FieldBody,
}

var fieldFormats = map[Field]string{
	FieldHash:               "%H",
	FieldSubject:            "%s",
	FieldAuthorName:         "%an",
	FieldAuthorDate:         "%ad",
	FieldAuthorTimestamp:    "%at",
	FieldCommitterName:      "%cn",
	FieldCommitterTimestamp: "%ct",
	FieldRawBody:            "%B",
	FieldBody:               "%b",
}

// ParseField validates a field name.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if _, ok := fieldFormats[f]; !ok {
		return "", &UnknownFieldError{Name: name}
	}
	return f, nil
}

// Format returns the git pretty-format placeholder for f.
func (f Field) Format() string {
	return fieldFormats[f]
}

// prettyFormat joins the placeholders of fields with %x00, so values are
// NUL-separated on the wire.
func prettyFormat(fields []Field) string {
	codes := make([]string, len(fields))
	for i, f := range fields {
		codes[i] = f.Format()
	}
	return "format:" + strings.Join(codes, "%x00")
}
