package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const SearchEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "search_event",
	"fields": [
		{"name": "session_id", "type": "string"},
		{"name": "query", "type": "string"},
		{"name": "category", "type": "string"},
		{"name": "results", "type": "long"},
		{"name": "at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type SearchEventV1 struct {
	SessionID string    `avro:"session_id"`
	Query     string    `avro:"query"`
	Category  string    `avro:"category"`
	Results   int64     `avro:"results"`
	At        time.Time `avro:"at"`
}

func SearchEventV1Avro() avro.Schema {
	return avro.MustParse(SearchEventSchemaTextV1)
}
