package cache

import (
	"fmt"
	"strings"
)

// KeySeparator delimits cache key segments. The keyspace is shared and
// unpartitioned across aggregate types; a stable prefix per type plus the
// identity or query parameters is the only isolation mechanism, so every
// key must be derived through these builders.
const KeySeparator = ":"

// IDKey builds the primary key for one aggregate: "course:{id}".
func IDKey(entity, id string) string {
	return entity + KeySeparator + id
}

// FieldKey builds a unique-field lookup key: "course:title:{value}". It is a
// separate namespace from IDKey, so both keys for the same row coexist and
// must both be invalidated on any write to that row.
func FieldKey(entity, field, value string) string {
	return strings.Join([]string{entity, field, value}, KeySeparator)
}

// PairKey builds a composite-identity key such as
// "enrollment:user:{uid}:course:{cid}".
func PairKey(entity, f1, v1, f2, v2 string) string {
	return strings.Join([]string{entity, f1, v1, f2, v2}, KeySeparator)
}

// ListNamespace builds the prefix under which every cached page of one
// listing lives: "courses", "courses:instructor:{iid}",
// "sections:course:{cid}". Mutations invalidate whole namespaces by prefix;
// page membership can shift on any write, so per-page invalidation is
// unsound.
func ListNamespace(plural string, scope ...string) string {
	if len(scope) == 0 {
		return plural
	}
	return plural + KeySeparator + strings.Join(scope, KeySeparator)
}

// PageKey builds the key for one cached page of a listing. Every query
// parameter participates, because each distinct combination is a logically
// distinct cached answer:
// "courses:instructor:{iid}:page:{p}:limit:{l}:sort:{field}:{dir}".
func PageKey(namespace string, page, limit int, sortField, sortDir string) string {
	return fmt.Sprintf("%s%spage:%d:limit:%d:sort:%s:%s",
		namespace, KeySeparator, page, limit, sortField, sortDir)
}
